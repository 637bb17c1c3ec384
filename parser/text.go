package parser

import (
	"html"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// Tags that end a line of visible text.
	blockTagRegex      = regexp.MustCompile(`(?i)<\s*(?:br|hr|/?p|/?li|/?ul|/?ol|/?div|/?section|/?article|/?h[1-6]|/?tr|/?table|/?dd|/?dt)\b[^>]*>`)
	repeatedSpaceRegex = regexp.MustCompile(`[ \t\f\v\r\x{00a0}]+`)
	repeatedLineRegex  = regexp.MustCompile(`\s*\n\s*`)
	anySpaceRegex      = regexp.MustCompile(`\s+`)
)

var policyPool = sync.Pool{
	New: func() interface{} {
		return bluemonday.StrictPolicy()
	},
}

// textLines strips all markup from an HTML fragment and returns its visible
// text, one line per block element. Empty lines are dropped.
func textLines(fragment string) []string {
	policy := policyPool.Get().(*bluemonday.Policy)
	defer policyPool.Put(policy)

	text := policy.Sanitize(blockTagRegex.ReplaceAllString(fragment, "\n"))
	text = html.UnescapeString(text)
	text = repeatedSpaceRegex.ReplaceAllString(text, " ")
	text = repeatedLineRegex.ReplaceAllString(text, "\n")
	text = strings.TrimSpace(text)

	if text == "" {
		return nil
	}

	return strings.Split(text, "\n")
}

// plainText strips all markup from an HTML fragment and collapses its
// whitespace into single spaces.
func plainText(fragment string) string {
	return strings.Join(textLines(fragment), " ")
}

// cleanInline collapses the whitespace of a short piece of text such as a
// title or a company name.
func cleanInline(s string) string {
	return strings.TrimSpace(anySpaceRegex.ReplaceAllString(html.UnescapeString(s), " "))
}

// truncate cuts s down to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}

	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}

	return strings.TrimSpace(s[:cut])
}
