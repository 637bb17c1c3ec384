package search_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/juju/clock"
	"github.com/juju/clock/testclock"
	check "gopkg.in/check.v1"

	"github.com/mycok/uJobs/jobs"
	"github.com/mycok/uJobs/search"
	"github.com/mycok/uJobs/search/mocks"
)

var _ = check.Suite(new(fetcherTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type fetcherTestSuite struct{}

func (s *fetcherTestSuite) TestConfigValidation(c *check.C) {
	_, err := search.NewFetcher(search.Config{})
	c.Assert(err, check.ErrorMatches, "(?ms).*search provider not provided.*")

	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	_, err = search.NewFetcher(search.Config{
		Provider:      mocks.NewMockProvider(ctrl),
		PagesPerQuery: 5,
	})
	c.Assert(err, check.ErrorMatches, "(?ms).*invalid value for pages per query.*")
}

func (s *fetcherTestSuite) TestFetchDeduplicatesAcrossPagesAndQueries(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	provider := mocks.NewMockProvider(ctrl)
	fullPage := links("q1", 0, search.ResultsPerPage)

	gomock.InOrder(
		provider.EXPECT().Query(gomock.Any(), search.Query{Text: "q1", Page: 1, Recency: jobs.Last7Days}).
			Return(fullPage, nil),
		// The first link is a tracking variant of the last link of page 1.
		provider.EXPECT().Query(gomock.Any(), search.Query{Text: "q1", Page: 2, Recency: jobs.Last7Days}).
			Return([]jobs.CandidateURL{
				{URL: "https://example.com/jobs/9?utm_source=x", Query: "q1"},
				{URL: "https://example.com/jobs/10", Query: "q1"},
			}, nil),
		provider.EXPECT().Query(gomock.Any(), search.Query{Text: "q2", Page: 1, Recency: jobs.Last7Days}).
			Return([]jobs.CandidateURL{
				{URL: "https://EXAMPLE.com/jobs/0/", Query: "q2"},
				{URL: "https://example.com/jobs/11", Query: "q2"},
			}, nil),
	)

	f := newFetcher(c, search.Config{Provider: provider})

	got := f.Fetch(context.TODO(), []string{"q1", "q2"}, jobs.Last7Days)
	c.Assert(got, check.HasLen, 12)

	for i := 0; i < 11; i++ {
		c.Assert(got[i], check.DeepEquals, jobs.CandidateURL{
			URL:   fmt.Sprintf("https://example.com/jobs/%d", i),
			Query: "q1",
		})
	}

	c.Assert(got[11], check.DeepEquals, jobs.CandidateURL{URL: "https://example.com/jobs/11", Query: "q2"})
}

func (s *fetcherTestSuite) TestFetchHonoursCandidateCap(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().Query(gomock.Any(), gomock.Any()).Return(links("q", 0, search.ResultsPerPage), nil)

	f := newFetcher(c, search.Config{Provider: provider, MaxCandidates: 4})

	got := f.Fetch(context.TODO(), []string{"q", "other"}, jobs.Last2Weeks)
	c.Assert(got, check.HasLen, 4)
}

func (s *fetcherTestSuite) TestFetchSkipsFailingQuery(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	provider := mocks.NewMockProvider(ctrl)
	gomock.InOrder(
		provider.EXPECT().Query(gomock.Any(), gomock.Any()).Return(nil, errors.New("upstream exploded")),
		provider.EXPECT().Query(gomock.Any(), gomock.Any()).Return(links("q2", 0, 2), nil),
	)

	f := newFetcher(c, search.Config{Provider: provider})

	got := f.Fetch(context.TODO(), []string{"q1", "q2"}, jobs.Last2Weeks)
	c.Assert(got, check.HasLen, 2)
	c.Assert(got[0].Query, check.Equals, "q2")
}

func (s *fetcherTestSuite) TestFetchReturnsEmptyWhenEveryQueryIsRateLimited(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	queries := []string{"q1", "q2", "q3"}
	maxRetries := 2

	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().Query(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("cse: %w", search.ErrRateLimited)).
		Times(len(queries) * (maxRetries + 1))

	f := newFetcher(c, search.Config{
		Provider:    provider,
		Clock:       clock.WallClock,
		BackoffBase: time.Millisecond,
		MaxRetries:  maxRetries,
	})

	got := f.Fetch(context.TODO(), queries, jobs.Last2Weeks)
	c.Assert(got, check.HasLen, 0)
}

func (s *fetcherTestSuite) TestFetchBacksOffAfterRateLimit(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	clk := testclock.NewClock(time.Now())
	start := clk.Now()

	var retriedAt time.Time

	provider := mocks.NewMockProvider(ctrl)
	gomock.InOrder(
		provider.EXPECT().Query(gomock.Any(), gomock.Any()).Return(nil, search.ErrRateLimited),
		provider.EXPECT().Query(gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, search.Query) ([]jobs.CandidateURL, error) {
				retriedAt = clk.Now()

				return links("q", 0, 1), nil
			}),
	)

	f := newFetcher(c, search.Config{
		Provider:      provider,
		Clock:         clk,
		BackoffBase:   2 * time.Second,
		PagesPerQuery: 1,
	})

	go func() {
		// The retry must wait for the full backoff.
		c.Check(clk.WaitAdvance(2*time.Second, 10*time.Second, 1), check.IsNil)
	}()

	got := f.Fetch(context.TODO(), []string{"q"}, jobs.Last2Weeks)
	c.Assert(got, check.HasLen, 1)
	c.Assert(retriedAt.Sub(start) >= 2*time.Second, check.Equals, true)
}

func (s *fetcherTestSuite) TestFetchEnforcesMinimumRequestInterval(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	clk := testclock.NewClock(time.Now())

	var calledAt []time.Time

	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().Query(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, search.Query) ([]jobs.CandidateURL, error) {
			calledAt = append(calledAt, clk.Now())

			return nil, nil
		}).Times(2)

	f := newFetcher(c, search.Config{
		Provider:           provider,
		Clock:              clk,
		MinRequestInterval: 500 * time.Millisecond,
	})

	go func() {
		c.Check(clk.WaitAdvance(500*time.Millisecond, 10*time.Second, 1), check.IsNil)
	}()

	got := f.Fetch(context.TODO(), []string{"q1", "q2"}, jobs.Last2Weeks)
	c.Assert(got, check.HasLen, 0)
	c.Assert(calledAt, check.HasLen, 2)
	c.Assert(calledAt[1].Sub(calledAt[0]) >= 500*time.Millisecond, check.Equals, true)
}

func (s *fetcherTestSuite) TestFetchStopsOnCancelledContext(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	ctx, cancel := context.WithCancel(context.TODO())

	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().Query(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, search.Query) ([]jobs.CandidateURL, error) {
			cancel()

			return links("q1", 0, search.ResultsPerPage), nil
		})

	f := newFetcher(c, search.Config{Provider: provider})

	got := f.Fetch(ctx, []string{"q1", "q2"}, jobs.Last2Weeks)
	c.Assert(got, check.HasLen, search.ResultsPerPage)
}

func newFetcher(c *check.C, cfg search.Config) *search.Fetcher {
	if cfg.MinRequestInterval == 0 {
		cfg.MinRequestInterval = -1
	}

	f, err := search.NewFetcher(cfg)
	c.Assert(err, check.IsNil)

	return f
}

func links(query string, from, n int) []jobs.CandidateURL {
	out := make([]jobs.CandidateURL, n)
	for i := 0; i < n; i++ {
		out[i] = jobs.CandidateURL{
			URL:   fmt.Sprintf("https://example.com/jobs/%d", from+i),
			Query: query,
		}
	}

	return out
}
