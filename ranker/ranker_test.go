package ranker_test

import (
	"math"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	check "gopkg.in/check.v1"

	"github.com/mycok/uJobs/jobs"
	"github.com/mycok/uJobs/ranker"
)

var _ = check.Suite(new(rankerTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type rankerTestSuite struct {
	now time.Time
	clk *testclock.Clock
	r   *ranker.Ranker
}

func (s *rankerTestSuite) SetUpTest(c *check.C) {
	s.now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	s.clk = testclock.NewClock(s.now)
	s.r = ranker.New(s.clk)
}

func (s *rankerTestSuite) TestEmptyInput(c *check.C) {
	c.Assert(s.r.Rank(jobs.SearchRequest{Role: "go"}, nil), check.IsNil)
}

func (s *rankerTestSuite) TestSingleTermScore(c *check.C) {
	res := s.r.Rank(jobs.SearchRequest{Role: "Go jobs"}, []jobs.Posting{{URL: "u1", Title: "Go"}})
	c.Assert(res, check.HasLen, 1)

	// N=1, df=1, tf=3 (title weight), |d|=avgdl=3.
	exp := math.Log(0.5/1.5+1) * 3 * (ranker.DefaultK1 + 1) / (3 + ranker.DefaultK1)
	assertClose(c, res[0].Score, exp)
	c.Assert(res[0].Rank, check.Equals, 1)
}

func (s *rankerTestSuite) TestRelevance(c *check.C) {
	postings := []jobs.Posting{
		{URL: "java", Title: "Java Developer", Description: "Build Java services."},
		{URL: "desc", Title: "Backend Developer", Description: "Build Go services as an engineer."},
		{URL: "title", Title: "Go Engineer", Keywords: []string{"go", "kubernetes"}, Description: "Build Go services."},
	}

	res := s.r.Rank(jobs.SearchRequest{Role: "go engineer"}, postings)
	c.Assert(resultURLs(res), check.DeepEquals, []string{"title", "desc", "java"})
	c.Assert(res[2].Score, check.Equals, 0.0)

	for i, r := range res {
		c.Assert(r.Rank, check.Equals, i+1)
		c.Assert(r.Score >= 0, check.Equals, true)
	}
}

func (s *rankerTestSuite) TestTieBreaksByDateThenInputOrder(c *check.C) {
	s.r.RecencyBonus = 0

	postings := []jobs.Posting{
		{URL: "undated-1", Title: "Go Engineer"},
		{URL: "old", Title: "Go Engineer", DatePosted: s.now.AddDate(0, 0, -10)},
		{URL: "undated-2", Title: "Go Engineer"},
		{URL: "new", Title: "Go Engineer", DatePosted: s.now.AddDate(0, 0, -1)},
	}

	res := s.r.Rank(jobs.SearchRequest{Role: "go engineer"}, postings)
	c.Assert(resultURLs(res), check.DeepEquals, []string{"new", "old", "undated-1", "undated-2"})
}

func (s *rankerTestSuite) TestLocationBonus(c *check.C) {
	postings := []jobs.Posting{
		{URL: "paris", Title: "Go Engineer", Location: "Paris, France"},
		{URL: "berlin", Title: "Go Engineer", Location: "Berlin, Germany"},
		{URL: "remote", Title: "Go Engineer", Location: "Paris, France", Remote: true},
		{URL: "berlin-nh", Title: "Go Engineer", Location: "Berlin, New Hampshire"},
	}

	res := s.r.Rank(jobs.SearchRequest{Role: "go engineer", Location: "Berlin, Germany"}, postings)
	c.Assert(resultURLs(res), check.DeepEquals, []string{"berlin", "remote", "paris", "berlin-nh"})
	assertClose(c, res[0].Score-res[2].Score, ranker.DefaultLocationBonus)
}

func (s *rankerTestSuite) TestRecencyBonus(c *check.C) {
	postings := []jobs.Posting{
		{URL: "stale", Title: "Go Engineer", DatePosted: s.now.AddDate(0, 0, -20)},
		{URL: "half", Title: "Go Engineer", DatePosted: s.now.AddDate(0, 0, -7)},
		{URL: "fresh", Title: "Go Engineer", DatePosted: s.now},
	}

	res := s.r.Rank(jobs.SearchRequest{Role: "go engineer", Recency: jobs.Last2Weeks}, postings)
	c.Assert(resultURLs(res), check.DeepEquals, []string{"fresh", "half", "stale"})
	assertClose(c, res[0].Score-res[2].Score, ranker.DefaultRecencyBonus)
	assertClose(c, res[1].Score-res[2].Score, ranker.DefaultRecencyBonus/2)
}

func (s *rankerTestSuite) TestRankIsDeterministic(c *check.C) {
	postings := []jobs.Posting{
		{URL: "a", Title: "Senior Go Engineer", Description: "Go, gRPC and Kafka."},
		{URL: "b", Title: "Go Developer", Description: "Go and Postgres.", Remote: true},
		{URL: "c", Title: "Platform Engineer", Description: "Kubernetes."},
	}
	req := jobs.SearchRequest{Role: "go engineer", Location: "Austin"}

	first := s.r.Rank(req, postings)
	second := s.r.Rank(req, postings)
	c.Assert(first, check.DeepEquals, second)
}

func (s *rankerTestSuite) TestScoresDoNotDriftWithinADay(c *check.C) {
	postings := []jobs.Posting{
		{URL: "a", Title: "Go Engineer", DatePosted: s.now.AddDate(0, 0, -3).Add(5 * time.Hour)},
		{URL: "b", Title: "Go Engineer", DatePosted: s.now.AddDate(0, 0, -13)},
		{URL: "c", Title: "Go Engineer", DatePosted: s.now.Add(-11 * time.Hour)},
	}
	req := jobs.SearchRequest{Role: "go engineer", Recency: jobs.Last2Weeks}

	first := s.r.Rank(req, postings)
	s.clk.Advance(7*time.Hour + 1234*time.Millisecond)
	second := s.r.Rank(req, postings)

	c.Assert(second, check.DeepEquals, first)
}

func (s *rankerTestSuite) TestCompanyAndLocationAreScored(c *check.C) {
	s.r.RecencyBonus = 0
	s.r.LocationBonus = 0

	postings := []jobs.Posting{
		{URL: "none", Title: "Engineer", Company: "Initech", Location: "Austin"},
		{URL: "company", Title: "Engineer", Company: "Stripe", Location: "Austin"},
		{URL: "location", Title: "Engineer", Company: "Initech", Location: "Dublin"},
	}

	res := s.r.Rank(jobs.SearchRequest{Role: "stripe dublin"}, postings)
	c.Assert(resultURLs(res)[2], check.Equals, "none")
	c.Assert(res[2].Score, check.Equals, 0.0)
	assertClose(c, res[0].Score, res[1].Score)
	c.Assert(res[0].Score > 0, check.Equals, true)
}

func resultURLs(res []jobs.RankedResult) []string {
	out := make([]string, len(res))
	for i, r := range res {
		out[i] = r.Posting.URL
	}

	return out
}

func assertClose(c *check.C, got, exp float64) {
	c.Assert(math.Abs(got-exp) < 1e-9, check.Equals, true, check.Commentf("got %v, expected %v", got, exp))
}
