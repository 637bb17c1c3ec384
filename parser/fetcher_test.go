package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	check "gopkg.in/check.v1"
)

var _ = check.Suite(new(collyFetcherTestSuite))

type collyFetcherTestSuite struct {
	srv *httptest.Server
}

func (s *collyFetcherTestSuite) SetUpSuite(c *check.C) {
	mux := http.NewServeMux()
	mux.HandleFunc("/job", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<html><body><h1>Go Engineer</h1><p>ua=%s</p></body></html>", r.UserAgent())
	})
	mux.HandleFunc("/feed", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"jobs": []}`)
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	})

	s.srv = httptest.NewServer(mux)
}

func (s *collyFetcherTestSuite) TearDownSuite(c *check.C) {
	s.srv.Close()
}

func (s *collyFetcherTestSuite) TestConfigValidation(c *check.C) {
	_, err := NewCollyFetcher(CollyConfig{Timeout: -1, Parallelism: -1})
	c.Assert(err, check.ErrorMatches, "(?ms).*invalid value for fetch timeout.*")
	c.Assert(err, check.ErrorMatches, "(?ms).*invalid value for per-domain parallelism.*")
}

func (s *collyFetcherTestSuite) TestFetchHTML(c *check.C) {
	f := s.newFetcher(c)

	body, err := f.Fetch(context.TODO(), s.srv.URL+"/job")
	c.Assert(err, check.IsNil)
	c.Assert(string(body), check.Matches, "(?s).*<h1>Go Engineer</h1>.*ua=uJobs-test.*")

	// The collector allows revisiting the same URL.
	_, err = f.Fetch(context.TODO(), s.srv.URL+"/job")
	c.Assert(err, check.IsNil)
}

func (s *collyFetcherTestSuite) TestFetchRejectsNonHTML(c *check.C) {
	_, err := s.newFetcher(c).Fetch(context.TODO(), s.srv.URL+"/feed")
	c.Assert(err, check.ErrorMatches, `unexpected content type "application/json"`)
}

func (s *collyFetcherTestSuite) TestFetchRejectsErrorStatus(c *check.C) {
	_, err := s.newFetcher(c).Fetch(context.TODO(), s.srv.URL+"/gone")
	c.Assert(err, check.NotNil)
}

func (s *collyFetcherTestSuite) TestFetchWithCancelledContext(c *check.C) {
	ctx, cancel := context.WithCancel(context.TODO())
	cancel()

	_, err := s.newFetcher(c).Fetch(ctx, s.srv.URL+"/job")
	c.Assert(err, check.NotNil)
}

func (s *collyFetcherTestSuite) newFetcher(c *check.C) *CollyFetcher {
	f, err := NewCollyFetcher(CollyConfig{
		UserAgent: "uJobs-test",
		Timeout:   5 * time.Second,
	})
	c.Assert(err, check.IsNil)

	return f
}
