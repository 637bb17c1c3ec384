package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layouts tried in order. Month-first beats day-first for ambiguous
// numeric dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	time.RFC1123Z,
	time.RFC1123,
}

var (
	isoDatePrefixRegex = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})`)
	relativeDateRegex  = regexp.MustCompile(`(?i)\b(?:posted|active|updated|reposted)?\s*(\d+)\+?\s*(minute|hour|day|week|month)s?\s+ago\b`)
	todayRegex         = regexp.MustCompile(`(?i)\b(?:posted|active)\s+(today|yesterday|just now)\b`)
)

// parseDate converts a date string in one of the common posting formats to
// a UTC time. It returns the zero time if s cannot be parsed.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}

	// ISO timestamps with unusual suffixes still start with the date.
	if m := isoDatePrefixRegex.FindStringSubmatch(s); m != nil {
		if t, err := time.Parse("2006-01-02", m[1]); err == nil {
			return t
		}
	}

	return time.Time{}
}

// parseRelativeDate understands phrases such as "Posted 3 days ago" or
// "Posted today", resolved against now. It returns the zero time if text
// holds no such phrase.
func parseRelativeDate(text string, now time.Time) time.Time {
	if m := todayRegex.FindStringSubmatch(text); m != nil {
		if strings.EqualFold(m[1], "yesterday") {
			return now.AddDate(0, 0, -1).UTC()
		}

		return now.UTC()
	}

	m := relativeDateRegex.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}
	}

	switch strings.ToLower(m[2]) {
	case "minute":
		return now.Add(-time.Duration(n) * time.Minute).UTC()
	case "hour":
		return now.Add(-time.Duration(n) * time.Hour).UTC()
	case "day":
		return now.AddDate(0, 0, -n).UTC()
	case "week":
		return now.AddDate(0, 0, -7*n).UTC()
	default:
		return now.AddDate(0, -n, 0).UTC()
	}
}

// calendarDate drops the time of day, keeping the UTC date.
func calendarDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}

	y, m, d := t.UTC().Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
