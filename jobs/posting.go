package jobs

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CandidateURL is a link returned by the web search provider that may point
// at a job posting.
type CandidateURL struct {
	// Link as returned by the provider.
	URL string

	// Query string that surfaced the link.
	Query string
}

// Salary describes the advertised compensation range, when one is present.
type Salary struct {
	Currency string
	Min      float64
	Max      float64

	// Unit of the range, e.g. YEAR or HOUR.
	Unit string
}

// Posting is a parsed job posting.
type Posting struct {
	// Assigned by a store on the first upsert.
	ID uuid.UUID

	// Canonical URL of the posting. Used as the posting identity.
	URL string

	Title    string
	Company  string
	Location string

	// Zero when the page did not carry a posting date.
	DatePosted time.Time

	// Zero when the page did not carry an expiry date.
	ValidThrough time.Time

	// Plain-text description.
	Description string

	// Salient terms extracted from the description.
	Keywords []string

	Board  Board
	Remote bool
	Salary *Salary

	// Time at which the posting was parsed.
	DiscoveredAt time.Time
}

// HasDate returns true if the posting carries a posting date.
func (p *Posting) HasDate() bool {
	return !p.DatePosted.IsZero()
}

// IdentityKey returns the key used for matching postings that share the same
// title and company. It returns an empty string when both are empty.
func (p *Posting) IdentityKey() string {
	return IdentityKey(p.Title, p.Company)
}

// Clone returns a deep copy of the posting.
func (p *Posting) Clone() Posting {
	c := *p
	c.Keywords = append([]string(nil), p.Keywords...)

	if p.Salary != nil {
		s := *p.Salary
		c.Salary = &s
	}

	return c
}

// IdentityKey builds a case-insensitive key from a title and company pair.
func IdentityKey(title, company string) string {
	t := strings.ToLower(strings.Join(strings.Fields(title), " "))
	c := strings.ToLower(strings.Join(strings.Fields(company), " "))

	if t == "" && c == "" {
		return ""
	}

	return t + "\x00" + c
}

// RankedResult wraps a posting with its relevance score and 1-based rank.
type RankedResult struct {
	Posting Posting
	Score   float64
	Rank    int
}
