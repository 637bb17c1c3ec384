package parser

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/mycok/uJobs/jobs"
)

// URL fragments that mark a link as pointing at a job posting or a job
// listing, checked before the deny-list.
var jobURLPatterns = []string{
	"careers.", "jobs.", "job.", "hiring.", "apply.", "career.",
	"/careers/", "/jobs/", "/job/", "/positions/", "/openings/",
}

// URL fragments that mark a link as something other than a job posting.
var nonJobURLPatterns = []string{
	// Social media and profiles.
	"facebook.com", "twitter.com", "instagram.com", "tiktok.com",
	"youtube.com", "reddit.com", "pinterest.com",
	"linkedin.com/company", "linkedin.com/in/", "linkedin.com/feed", "linkedin.com/pulse",
	// Reference and salary aggregators.
	"wikipedia.org", "levels.fyi", "6figr.com", "payscale.com/research",
	// Editorial content.
	"/news/", "/blog/", "/blogs/", "/article/", "/articles/", "/story/", "/press/",
	// Public institutions.
	".gov/", ".edu/", ".mil/",
	// Events and site chrome.
	"/event/", "/events/", "/calendar/", "/about/", "/about-us", "/contact/",
	"/contact-us", "/privacy", "/terms", "/help/", "/login", "/signin", "/sign-in",
}

// Non-HTML resources.
var nonHTMLRegex = regexp.MustCompile(`(?i)\.(?:jpe?g|png|gif|svg|ico|css|js|pdf|docx?|xlsx?|zip|mp4|mp3)$`)

// Paths of error pages.
var errorPageRegex = regexp.MustCompile(`(?i)/(?:404|500|error|not-found|notfound|page-not-found)(?:/|\.html?|$)`)

// IsNonJobURL returns true if rawURL can be rejected without fetching it.
// Links on known job boards and links carrying job-related path segments
// always pass; everything else is checked against a deny-list.
func IsNonJobURL(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return true
	}

	if nonHTMLRegex.MatchString(u.Path) || errorPageRegex.MatchString(u.Path) {
		return true
	}

	if jobs.IsJobBoardURL(rawURL) {
		return false
	}

	lower := strings.ToLower(u.Host + u.EscapedPath())
	// Host names without a trailing slash would not match "*.gov/" and
	// similar patterns.
	if u.Path == "" {
		lower += "/"
	}

	for _, pattern := range jobURLPatterns {
		if strings.Contains(lower, pattern) {
			return false
		}
	}

	for _, pattern := range nonJobURLPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}

	return false
}
