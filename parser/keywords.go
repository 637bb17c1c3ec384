package parser

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var (
	urlRegex         = regexp.MustCompile(`https?://\S+`)
	punctuationRegex = regexp.MustCompile(`[^\p{L}\p{N}\s+#]+`)
)

// Terms too common in job descriptions to be informative.
var stopwords = map[string]struct{}{
	"a": {}, "about": {}, "above": {}, "after": {}, "all": {}, "also": {}, "am": {},
	"an": {}, "and": {}, "any": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"been": {}, "being": {}, "both": {}, "but": {}, "by": {}, "can": {}, "could": {},
	"did": {}, "do": {}, "does": {}, "each": {}, "etc": {}, "for": {}, "from": {},
	"had": {}, "has": {}, "have": {}, "having": {}, "he": {}, "her": {}, "here": {},
	"his": {}, "how": {}, "i": {}, "if": {}, "in": {}, "into": {}, "is": {}, "it": {},
	"its": {}, "just": {}, "may": {}, "more": {}, "most": {}, "must": {}, "my": {},
	"no": {}, "not": {}, "of": {}, "on": {}, "one": {}, "or": {}, "other": {},
	"our": {}, "ours": {}, "out": {}, "over": {}, "own": {}, "per": {}, "plus": {},
	"same": {}, "she": {}, "should": {}, "so": {}, "some": {}, "such": {}, "than": {},
	"that": {}, "the": {}, "their": {}, "them": {}, "then": {}, "there": {},
	"these": {}, "they": {}, "this": {}, "those": {}, "through": {}, "to": {},
	"too": {}, "under": {}, "up": {}, "us": {}, "very": {}, "via": {}, "was": {},
	"we": {}, "were": {}, "what": {}, "when": {}, "where": {}, "which": {},
	"while": {}, "who": {}, "whom": {}, "why": {}, "will": {}, "with": {},
	"within": {}, "would": {}, "you": {}, "your": {}, "yours": {},
	// Boilerplate common to almost every posting.
	"ability": {}, "apply": {}, "candidate": {}, "candidates": {}, "company": {},
	"including": {}, "job": {}, "join": {}, "looking": {}, "new": {}, "opportunity": {},
	"position": {}, "preferred": {}, "required": {}, "requirements": {},
	"responsibilities": {}, "role": {}, "strong": {}, "team": {}, "work": {},
	"working": {}, "years": {},
}

// ExtractKeywords returns up to limit of the most frequent terms of text
// that are at least minLen runes long and not stop-words. Ties are broken
// alphabetically, so the output is deterministic. A limit <= 0 returns all
// terms.
func ExtractKeywords(text string, limit, minLen int) []string {
	clean := strings.ToLower(urlRegex.ReplaceAllString(text, " "))
	clean = punctuationRegex.ReplaceAllString(clean, " ")

	freq := make(map[string]int)
	for _, token := range strings.Fields(clean) {
		// Keep tokens such as c++ and c# intact but drop stray symbols.
		token = strings.TrimLeftFunc(token, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})

		if len([]rune(token)) < minLen || isNumeric(strings.TrimRight(token, "+#")) {
			continue
		}

		if _, skip := stopwords[token]; skip {
			continue
		}

		freq[token]++
	}

	if len(freq) == 0 {
		return nil
	}

	type termCount struct {
		term  string
		count int
	}

	pairs := make([]termCount, 0, len(freq))
	for term, count := range freq {
		pairs = append(pairs, termCount{term: term, count: count})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count == pairs[j].count {
			return pairs[i].term < pairs[j].term
		}

		return pairs[i].count > pairs[j].count
	})

	n := limit
	if n <= 0 || n > len(pairs) {
		n = len(pairs)
	}

	keywords := make([]string, n)
	for i := 0; i < n; i++ {
		keywords[i] = pairs[i].term
	}

	return keywords
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}

	return true
}
