package filter

import (
	"io"
	"regexp"
	"time"

	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/mycok/uJobs/jobs"
)

// Reason names the rule a posting was rejected by.
type Reason string

// Rejection reasons, in the order the rules are checked.
const (
	ReasonFuturePosting  Reason = "future_posting"
	ReasonExpiredPosting Reason = "expired_posting"
	ReasonGenericTitle   Reason = "generic_title"
	ReasonNotJobLike     Reason = "not_job_like"
	ReasonDuplicate      Reason = "duplicate"
)

// Strictness controls how duplicates are detected.
type Strictness int

const (
	// StrictnessDefault treats two postings as duplicates when they share a
	// canonical URL or a title and company pair.
	StrictnessDefault Strictness = iota

	// StrictnessURLOnly treats two postings as duplicates only when they
	// share a canonical URL, keeping same-titled roles at different URLs.
	StrictnessURLOnly
)

// Report summarizes a Filter call.
type Report struct {
	Accepted int
	Rejected map[Reason]int
}

// Total returns the number of postings examined.
func (r Report) Total() int {
	total := r.Accepted
	for _, n := range r.Rejected {
		total += n
	}

	return total
}

// Validator drops postings that are not real, current, unique job postings.
// The zero value is ready to use.
type Validator struct {
	// A clock instance for resolving the current date. If not specified, a
	// default wall-clock implementation will be used.
	Clock clock.Clock

	// Logger instance. If not specified, rejections are not logged.
	Logger *logrus.Entry

	Strictness Strictness
}

var discardLogger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})

// Check returns the first per-posting rule p fails, or an empty Reason if it
// passes them all. Duplicates are detected by Filter only.
func (v *Validator) Check(p *jobs.Posting) Reason {
	today := dayOf(v.clock().Now())

	switch {
	case p.HasDate() && dayOf(p.DatePosted).After(today):
		return ReasonFuturePosting
	case isExpired(p, today):
		return ReasonExpiredPosting
	case IsGenericTitle(p.Title):
		return ReasonGenericTitle
	case !IsJobLike(p.Description):
		return ReasonNotJobLike
	}

	return ""
}

// Filter returns the postings that pass every rule, in their original
// order, with DatePosted reduced to its UTC calendar date. A posting that duplicates an earlier accepted one is dropped, so
// the first discovered copy wins.
func (v *Validator) Filter(postings []jobs.Posting) ([]jobs.Posting, Report) {
	var (
		accepted   = make([]jobs.Posting, 0, len(postings))
		seenURLs   = make(map[string]struct{}, len(postings))
		seenIdents = make(map[string]struct{}, len(postings))
		report     = Report{Rejected: make(map[Reason]int)}
	)

	for i := range postings {
		p := &postings[i]
		url := jobs.CanonicalURL(p.URL)
		ident := p.IdentityKey()

		reason := v.Check(p)
		if reason == "" && v.isDuplicate(url, ident, seenURLs, seenIdents) {
			reason = ReasonDuplicate
		}

		if reason != "" {
			report.Rejected[reason]++
			v.logger().WithFields(logrus.Fields{
				"reason": reason,
				"url":    p.URL,
			}).Debug("posting rejected")

			continue
		}

		seenURLs[url] = struct{}{}
		if ident != "" {
			seenIdents[ident] = struct{}{}
		}

		kept := *p
		if kept.HasDate() {
			kept.DatePosted = dayOf(kept.DatePosted)
		}

		accepted = append(accepted, kept)
		report.Accepted++
	}

	return accepted, report
}

func (v *Validator) isDuplicate(url, ident string, urls, idents map[string]struct{}) bool {
	if _, seen := urls[url]; seen {
		return true
	}

	if v.Strictness == StrictnessURLOnly || ident == "" {
		return false
	}

	_, seen := idents[ident]

	return seen
}

func (v *Validator) clock() clock.Clock {
	if v.Clock == nil {
		return clock.WallClock
	}

	return v.Clock
}

func (v *Validator) logger() *logrus.Entry {
	if v.Logger == nil {
		return discardLogger
	}

	return v.Logger
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var closedPostingRegex = regexp.MustCompile(
	`(?i)\b(?:no longer available|position has been filled|no longer accepting applications|this job is closed|job has expired)\b`,
)

func isExpired(p *jobs.Posting, today time.Time) bool {
	if !p.ValidThrough.IsZero() && dayOf(p.ValidThrough).Before(today) {
		return true
	}

	return closedPostingRegex.MatchString(p.Description)
}
