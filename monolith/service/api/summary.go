package api

import (
	"bufio"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

type scoredSentence struct {
	position int
	text     string
	ratio    float64
}

// summarizer picks the description sentences that mention the most search
// terms and fits them into maxLen characters.
type summarizer struct {
	terms  map[string]struct{}
	maxLen int
}

func newSummarizer(query string, maxLen int) *summarizer {
	terms := make(map[string]struct{})
	for _, term := range strings.Fields(strings.ToLower(query)) {
		terms[strings.Trim(term, `"`)] = struct{}{}
	}

	return &summarizer{terms: terms, maxLen: maxLen}
}

// Summary returns the summary for text. Without matching sentences it
// falls back to the start of the text.
func (s *summarizer) Summary(text string) string {
	var matched []scoredSentence

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 4096), len(text)+1)
	scanner.Split(scanSentence)

	for position := 0; scanner.Scan(); {
		sentence := strings.TrimSpace(scanner.Text())
		if sentence == "" {
			continue
		}

		if ratio := s.matchRatio(sentence); ratio > 0 {
			matched = append(matched, scoredSentence{position: position, text: sentence, ratio: ratio})
		}

		position++
	}

	if len(matched) == 0 {
		return clip(strings.Join(strings.Fields(text), " "), s.maxLen)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].ratio > matched[j].ratio
	})

	var picked []scoredSentence
	for i, remaining := 0, s.maxLen; i < len(matched) && remaining > 0; i++ {
		sentence := matched[i]
		sentence.text = clip(sentence.text, remaining)
		remaining -= utf8.RuneCountInString(sentence.text)
		picked = append(picked, sentence)
	}

	sort.Slice(picked, func(i, j int) bool {
		return picked[i].position < picked[j].position
	})

	var sb strings.Builder
	for i, sentence := range picked {
		if i > 0 {
			if sentence.position-picked[i-1].position == 1 {
				sb.WriteByte(' ')
			} else {
				sb.WriteString(" ... ")
			}
		}

		sb.WriteString(sentence.text)
	}

	return sb.String()
}

func (s *summarizer) matchRatio(sentence string) float64 {
	words := strings.FieldsFunc(strings.ToLower(sentence), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})

	if len(words) == 0 {
		return 0
	}

	var hits int
	for _, word := range words {
		if _, ok := s.terms[word]; ok {
			hits++
		}
	}

	return float64(hits) / float64(len(words))
}

// clip cuts text to at most n runes, marking the cut with "...".
func clip(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}

	return strings.TrimSpace(string([]rune(text)[:n])) + "..."
}

// scanSentence is a bufio.SplitFunc that ends a sentence after '.', '!' or
// '?' followed by whitespace, or at a line break.
func scanSentence(data []byte, atEOF bool) (int, []byte, error) {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])

		switch {
		case r == '\n':
			return i + size, data[:i], nil
		case r == '.' || r == '!' || r == '?':
			if i+size < len(data) {
				next, _ := utf8.DecodeRune(data[i+size:])
				if unicode.IsSpace(next) {
					return i + size, data[:i+size], nil
				}
			}
		}

		i += size
	}

	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}

	return 0, nil, nil
}
