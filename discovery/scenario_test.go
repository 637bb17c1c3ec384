package discovery_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/juju/clock/testclock"
	check "gopkg.in/check.v1"

	"github.com/mycok/uJobs/discovery"
	"github.com/mycok/uJobs/jobs"
	"github.com/mycok/uJobs/parser"
	"github.com/mycok/uJobs/search"
)

var _ = check.Suite(new(scenarioTestSuite))

// scenarioTestSuite runs the real query builder, fetcher, parser, validator
// and ranker against canned search results and pages.
type scenarioTestSuite struct {
	now time.Time
	clk *testclock.Clock
}

func (s *scenarioTestSuite) SetUpTest(c *check.C) {
	s.now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	s.clk = testclock.NewClock(s.now)
}

func (s *scenarioTestSuite) TestPostingsWithoutDescriptionsAreDropped(c *check.C) {
	pages := map[string]string{
		"https://acme.com/jobs/1":       jsonLD("Backend Engineer", "Acme", "2024-05-08", "Responsibilities: design APIs."),
		"https://globex.com/careers/2":  jsonLD("Go Developer", "Globex", "2024-05-09", "Responsibilities: ship Go services."),
		"https://initech.com/jobs/3":    `<html><head><title>Initech</title></head><body><p>Hi</p></body></html>`,
		"https://www.facebook.com/acme": `<html></html>`,
	}

	res := s.search(c, pages, jobs.SearchRequest{Role: "backend engineer"})
	c.Assert(res, check.HasLen, 2)
	assertWellFormed(c, res, s.now)
}

func (s *scenarioTestSuite) TestSameTitleAndCompanyYieldsOneResult(c *check.C) {
	pages := map[string]string{
		"https://acme.com/jobs/1":                   jsonLD("Software Engineer", "Acme Corp", "", "Requirements: Go experience."),
		"https://boards.greenhouse.io/acme/jobs/99": jsonLD("Software Engineer", "Acme Corp", "", "Requirements: Go experience and more."),
	}

	res := s.search(c, pages, jobs.SearchRequest{Role: "software engineer"})
	c.Assert(res, check.HasLen, 1)
	c.Assert(res[0].Posting.URL, check.Equals, "https://acme.com/jobs/1")
}

func (s *scenarioTestSuite) TestPostingDatedTomorrowIsExcluded(c *check.C) {
	tomorrow := s.now.AddDate(0, 0, 1).Format("2006-01-02")
	pages := map[string]string{
		"https://acme.com/jobs/1": jsonLD("Data Engineer", "Acme", tomorrow, "Requirements: SQL skills."),
		"https://acme.com/jobs/2": jsonLD("Data Analyst", "Acme", "2024-05-10", "Requirements: SQL skills."),
	}

	res := s.search(c, pages, jobs.SearchRequest{Role: "data engineer"})
	c.Assert(res, check.HasLen, 1)
	c.Assert(res[0].Posting.URL, check.Equals, "https://acme.com/jobs/2")
}

func (s *scenarioTestSuite) TestRateLimitedEverywhereYieldsEmptyResult(c *check.C) {
	provider := &stubProvider{err: fmt.Errorf("quota: %w", search.ErrRateLimited)}

	res, err := s.engine(c, provider, nil).Search(context.TODO(), jobs.SearchRequest{Role: "go developer"})
	c.Assert(err, check.IsNil)
	c.Assert(res, check.HasLen, 0)
	c.Assert(provider.callCount() > 0, check.Equals, true)
}

func (s *scenarioTestSuite) TestSearchIsIdempotent(c *check.C) {
	pages := map[string]string{
		"https://acme.com/jobs/1":      jsonLD("Senior Go Engineer", "Acme", "2024-05-01", "Responsibilities: Go, Kafka."),
		"https://globex.com/jobs/2":    jsonLD("Go Engineer", "Globex", "2024-05-09", "Responsibilities: Go services."),
		"https://initech.com/careers/": jsonLD("Platform Engineer", "Initech", "", "Requirements: Kubernetes."),
	}
	req := jobs.SearchRequest{Role: "go engineer", Location: "Berlin"}

	first := s.search(c, pages, req)
	second := s.search(c, pages, req)
	c.Assert(first, check.HasLen, 3)
	c.Assert(second, check.DeepEquals, first)
	assertWellFormed(c, first, s.now)
}

func (s *scenarioTestSuite) search(c *check.C, pages map[string]string, req jobs.SearchRequest) []jobs.RankedResult {
	var links []jobs.CandidateURL
	for _, u := range sortedKeys(pages) {
		links = append(links, jobs.CandidateURL{URL: u})
	}

	res, err := s.engine(c, &stubProvider{links: links}, pages).Search(context.TODO(), req)
	c.Assert(err, check.IsNil)

	return res
}

func (s *scenarioTestSuite) engine(c *check.C, provider search.Provider, pages map[string]string) *discovery.Engine {
	fetcher, err := search.NewFetcher(search.Config{
		Provider:           provider,
		Clock:              clock.WallClock,
		MinRequestInterval: -1,
		BackoffBase:        time.Millisecond,
		MaxRetries:         1,
	})
	c.Assert(err, check.IsNil)

	p, err := parser.New(parser.Config{
		Fetcher: stubPages(pages),
		Clock:   s.clk,
	})
	c.Assert(err, check.IsNil)

	e, err := discovery.New(discovery.Config{
		Fetcher: fetcher,
		Parser:  p,
		Clock:   s.clk,
	})
	c.Assert(err, check.IsNil)

	return e
}

func assertWellFormed(c *check.C, res []jobs.RankedResult, now time.Time) {
	urls := make(map[string]struct{})
	idents := make(map[string]struct{})

	for i, r := range res {
		c.Assert(r.Rank, check.Equals, i+1)
		c.Assert(r.Score >= 0, check.Equals, true)
		c.Assert(r.Posting.DatePosted.After(now), check.Equals, false)

		if i > 0 {
			c.Assert(res[i-1].Score >= r.Score, check.Equals, true)
		}

		_, dup := urls[r.Posting.URL]
		c.Assert(dup, check.Equals, false)
		urls[r.Posting.URL] = struct{}{}

		_, dup = idents[r.Posting.IdentityKey()]
		c.Assert(dup, check.Equals, false)
		idents[r.Posting.IdentityKey()] = struct{}{}
	}
}

// stubProvider returns links on the first page of every query, or err for
// every call when set.
type stubProvider struct {
	links []jobs.CandidateURL
	err   error

	mu    sync.Mutex
	calls int
}

func (p *stubProvider) Query(_ context.Context, q search.Query) ([]jobs.CandidateURL, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if p.err != nil {
		return nil, p.err
	}

	if q.Page > 1 {
		return nil, nil
	}

	out := make([]jobs.CandidateURL, len(p.links))
	for i, l := range p.links {
		out[i] = jobs.CandidateURL{URL: l.URL, Query: q.Text}
	}

	return out, nil
}

func (p *stubProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.calls
}

type stubPages map[string]string

func (p stubPages) Fetch(_ context.Context, url string) ([]byte, error) {
	body, ok := p[url]
	if !ok {
		return nil, fmt.Errorf("unexpected url %s", url)
	}

	return []byte(body), nil
}

func jsonLD(title, company, posted, description string) string {
	return fmt.Sprintf(`<html><head><script type="application/ld+json">
{"@context": "https://schema.org", "@type": "JobPosting", "title": %q,
 "hiringOrganization": {"name": %q}, "datePosted": %q, "description": %q}
</script></head><body></body></html>`, title, company, posted, description)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
