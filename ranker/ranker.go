// Package ranker orders postings by their relevance to a search request.
package ranker

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/juju/clock"

	"github.com/mycok/uJobs/jobs"
)

// Default scoring parameters.
const (
	DefaultK1                = 1.5
	DefaultB                 = 0.75
	DefaultTitleWeight       = 3
	DefaultCompanyWeight     = 2
	DefaultLocationWeight    = 2
	DefaultKeywordWeight     = 2
	DefaultDescriptionWeight = 1
	DefaultLocationBonus     = 1.0
	DefaultRecencyBonus      = 0.5
)

// Ranker scores postings with BM25 over a field-weighted bag of terms, plus
// bonuses for matching the requested location and for freshness.
type Ranker struct {
	// BM25 term-saturation and length-normalization parameters.
	K1 float64
	B  float64

	// Each occurrence of a term in a field counts this many times.
	TitleWeight       int
	CompanyWeight     int
	LocationWeight    int
	KeywordWeight     int
	DescriptionWeight int

	// Added to postings in the requested location or open to remote work.
	LocationBonus float64

	// Maximum bonus for a posting published today, decaying linearly per
	// whole day to zero at the edge of the request's recency window.
	RecencyBonus float64

	// A clock instance for computing posting age. If not specified, a
	// default wall-clock implementation will be used.
	Clock clock.Clock
}

// New returns a Ranker with the default parameters.
func New(clk clock.Clock) *Ranker {
	return &Ranker{
		K1:                DefaultK1,
		B:                 DefaultB,
		TitleWeight:       DefaultTitleWeight,
		CompanyWeight:     DefaultCompanyWeight,
		LocationWeight:    DefaultLocationWeight,
		KeywordWeight:     DefaultKeywordWeight,
		DescriptionWeight: DefaultDescriptionWeight,
		LocationBonus:     DefaultLocationBonus,
		RecencyBonus:      DefaultRecencyBonus,
		Clock:             clk,
	}
}

// document is the weighted term bag of one posting.
type document struct {
	tf     map[string]float64
	length float64
}

// Rank scores postings against req and returns them best first, with
// 1-based ranks. Equal scores are ordered by posting date, newest first and
// undated last, then by their position in postings.
func (r *Ranker) Rank(req jobs.SearchRequest, postings []jobs.Posting) []jobs.RankedResult {
	if len(postings) == 0 {
		return nil
	}

	req = req.Normalized()
	terms := queryTerms(req.Role)
	docs := make([]document, len(postings))

	var totalLen float64
	for i := range postings {
		docs[i] = r.document(&postings[i])
		totalLen += docs[i].length
	}

	avgLen := totalLen / float64(len(docs))
	idf := make(map[string]float64, len(terms))

	for _, t := range terms {
		var df int
		for _, d := range docs {
			if d.tf[t] > 0 {
				df++
			}
		}

		n := float64(len(docs))
		idf[t] = math.Log((n-float64(df)+0.5)/(float64(df)+0.5) + 1)
	}

	var (
		now     = r.clock().Now()
		locTerm = tokenize(req.Location)
		results = make([]jobs.RankedResult, len(postings))
	)

	for i := range postings {
		score := r.bm25(docs[i], terms, idf, avgLen)

		if len(locTerm) > 0 && matchesLocation(&postings[i], locTerm) {
			score += r.LocationBonus
		}

		score += r.recency(&postings[i], now, req.Recency.Window())

		results[i] = jobs.RankedResult{Posting: postings[i], Score: score}
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}

		if a.Posting.HasDate() != b.Posting.HasDate() {
			return a.Posting.HasDate()
		}

		return a.Posting.DatePosted.After(b.Posting.DatePosted)
	})

	for i := range results {
		results[i].Rank = i + 1
	}

	return results
}

func (r *Ranker) document(p *jobs.Posting) document {
	d := document{tf: make(map[string]float64)}

	add := func(text string, weight int) {
		for _, t := range tokenize(text) {
			d.tf[t] += float64(weight)
			d.length += float64(weight)
		}
	}

	add(p.Title, r.TitleWeight)
	add(p.Company, r.CompanyWeight)
	add(p.Location, r.LocationWeight)
	add(strings.Join(p.Keywords, " "), r.KeywordWeight)
	add(p.Description, r.DescriptionWeight)

	return d
}

func (r *Ranker) bm25(d document, terms []string, idf map[string]float64, avgLen float64) float64 {
	if avgLen == 0 {
		return 0
	}

	var score float64
	for _, t := range terms {
		tf := d.tf[t]
		if tf == 0 {
			continue
		}

		norm := tf + r.K1*(1-r.B+r.B*d.length/avgLen)
		score += idf[t] * tf * (r.K1 + 1) / norm
	}

	return score
}

func (r *Ranker) recency(p *jobs.Posting, now time.Time, window time.Duration) float64 {
	if !p.HasDate() || window <= 0 {
		return 0
	}

	age := dayOf(now).Sub(dayOf(p.DatePosted))
	if age < 0 {
		age = 0
	}

	if age > window {
		return 0
	}

	return r.RecencyBonus * (1 - float64(age)/float64(window))
}

func (r *Ranker) clock() clock.Clock {
	if r.Clock == nil {
		return clock.WallClock
	}

	return r.Clock
}

// matchesLocation returns true if the posting is remote or its location
// carries every requested location term.
func matchesLocation(p *jobs.Posting, want []string) bool {
	if p.Remote {
		return true
	}

	have := make(map[string]struct{})
	for _, t := range tokenize(p.Location) {
		have[t] = struct{}{}
	}

	for _, t := range want {
		if _, ok := have[t]; !ok {
			return false
		}
	}

	return true
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
