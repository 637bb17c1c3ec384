package ranker

import (
	"strings"
	"unicode"
)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "at": {}, "for": {}, "in": {}, "of": {},
	"on": {}, "or": {}, "the": {}, "to": {}, "with": {}, "job": {}, "jobs": {},
	"role": {}, "position": {}, "opening": {}, "hiring": {},
}

// tokenize splits s into lower-case terms. Letters, digits, '+' and '#'
// form terms so that c++ and c# survive.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '+' && r != '#'
	})
}

// queryTerms returns the distinct non-stop-word terms of s in order of
// first appearance.
func queryTerms(s string) []string {
	var (
		terms []string
		seen  = make(map[string]struct{})
	)

	for _, t := range tokenize(s) {
		if _, stop := stopwords[t]; stop {
			continue
		}

		if _, dup := seen[t]; dup {
			continue
		}

		seen[t] = struct{}{}
		terms = append(terms, t)
	}

	return terms
}
