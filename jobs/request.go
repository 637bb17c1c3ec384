package jobs

import (
	"fmt"
	"strings"
	"time"
)

// Recency constrains how old a posting may be.
type Recency string

const (
	// Last7Days restricts results to postings from the past week.
	Last7Days Recency = "d7"

	// Last2Weeks restricts results to postings from the past two weeks.
	Last2Weeks Recency = "w2"

	// LastMonth restricts results to postings from the past month.
	LastMonth Recency = "m1"

	// DefaultRecency is used when a request does not specify a window.
	DefaultRecency = Last2Weeks
)

// ParseRecency converts a short code (d7, w2, m1) or a long name
// (last_7_days, last_2_weeks, last_month) into a Recency value. An empty
// string yields DefaultRecency.
func ParseRecency(s string) (Recency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultRecency, nil
	case "d7", "last_7_days", "7d", "week":
		return Last7Days, nil
	case "w2", "last_2_weeks", "14d", "2w":
		return Last2Weeks, nil
	case "m1", "last_month", "30d", "month":
		return LastMonth, nil
	default:
		return "", fmt.Errorf("%w: unknown recency %q", ErrInvalidRequest, s)
	}
}

// Window returns the maximum posting age covered by r.
func (r Recency) Window() time.Duration {
	switch r {
	case Last7Days:
		return 7 * 24 * time.Hour
	case LastMonth:
		return 30 * 24 * time.Hour
	default:
		return 14 * 24 * time.Hour
	}
}

// DateRestrict returns the date restriction code understood by the web
// search API.
func (r Recency) DateRestrict() string {
	switch r {
	case Last7Days, Last2Weeks, LastMonth:
		return string(r)
	default:
		return string(DefaultRecency)
	}
}

// Hint returns a short natural-language phrase describing r.
func (r Recency) Hint() string {
	switch r {
	case Last7Days:
		return "past week"
	case LastMonth:
		return "past month"
	default:
		return "past 2 weeks"
	}
}

// SearchRequest describes what the caller is looking for.
type SearchRequest struct {
	// Role or keyword phrase, e.g. "backend engineer". Required.
	Role string

	// Free-text location, e.g. "Chicago, IL". Optional.
	Location string

	// Maximum posting age.
	Recency Recency
}

// Validate ensures the request can be served. The returned error wraps
// ErrInvalidRequest.
func (r SearchRequest) Validate() error {
	if strings.TrimSpace(r.Role) == "" {
		return fmt.Errorf("%w: role not provided", ErrInvalidRequest)
	}

	switch r.Recency {
	case "", Last7Days, Last2Weeks, LastMonth:
	default:
		return fmt.Errorf("%w: unknown recency %q", ErrInvalidRequest, r.Recency)
	}

	return nil
}

// Normalized returns a copy of r with collapsed whitespace and the default
// recency filled in.
func (r SearchRequest) Normalized() SearchRequest {
	r.Role = strings.Join(strings.Fields(r.Role), " ")
	r.Location = strings.Join(strings.Fields(r.Location), " ")

	if r.Recency == "" {
		r.Recency = DefaultRecency
	}

	return r
}
