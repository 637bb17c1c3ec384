package filter

import (
	"regexp"
	"strings"
)

// Phrases that mark a title as a listing, error or interstitial page.
var genericTitlePhrases = []string{
	"jobs found", "job openings", "jobs available", "jobs near", "jobs in",
	"view all jobs", "search jobs", "browse jobs", "find jobs", "job search",
	"search results", "careers page", "career opportunities", "current openings",
	"page not found", "access denied", "you have been blocked", "just a moment",
	"attention required", "sign in", "sign up", "log in", "homepage", "home page",
}

// Titles that are nothing but a site or section name.
var genericTitleNames = map[string]struct{}{
	"linkedin": {}, "indeed": {}, "glassdoor": {}, "monster": {}, "ziprecruiter": {},
	"greenhouse": {}, "lever": {}, "workday": {}, "google": {}, "careers": {},
	"career": {}, "jobs": {}, "home": {}, "welcome": {}, "login": {}, "error": {},
	"about us": {}, "contact us": {}, "untitled": {}, "404": {}, "forbidden": {},
}

var genericTitleRegex = phraseRegex(genericTitlePhrases)

var (
	// Result counters such as "1,234 jobs" or "50+ Go developer jobs".
	jobCounterRegex = regexp.MustCompile(`(?i)^\d[\d,.]*\+?\s+(?:[\w-]+\s+){0,5}jobs?\b`)

	jobIndicatorRegex = regexp.MustCompile(
		`(?i)\b(?:responsibilit|requirement|qualification|experience|skill|job description|` +
			`we are looking|we're looking|candidate|must have|benefits|salary|full[- ]time|part[- ]time)`,
	)
)

// IsGenericTitle returns true if title is empty or names a listing page,
// an error page or a bare site rather than a role.
func IsGenericTitle(title string) bool {
	t := strings.ToLower(strings.Join(strings.Fields(title), " "))
	if t == "" {
		return true
	}

	if _, bare := genericTitleNames[t]; bare {
		return true
	}

	if jobCounterRegex.MatchString(t) {
		return true
	}

	return genericTitleRegex.MatchString(t)
}

// IsJobLike returns true if description reads like a job description.
func IsJobLike(description string) bool {
	return jobIndicatorRegex.MatchString(description)
}

// phraseRegex matches any of phrases as whole words.
func phraseRegex(phrases []string) *regexp.Regexp {
	quoted := make([]string, len(phrases))
	for i, phrase := range phrases {
		quoted[i] = regexp.QuoteMeta(phrase)
	}

	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}
