/*
Package discovery runs the job discovery pipeline for a search request:

 1. build web search queries for the requested role and location.
 2. collect candidate links from the search provider, honouring its rate
    limits.
 3. fetch and parse every candidate page through a bounded worker pool.
 4. drop invalid, expired and duplicate postings.
 5. rank the remaining postings by relevance.
*/
package discovery

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/mycok/uJobs/filter"
	"github.com/mycok/uJobs/jobs"
	"github.com/mycok/uJobs/parser"
	"github.com/mycok/uJobs/pipeline"
	"github.com/mycok/uJobs/query"
	"github.com/mycok/uJobs/ranker"
)

// Config encapsulates the settings for configuring an Engine.
type Config struct {
	// Builds the search queries. Defaults to a query.Builder.
	Builder QueryBuilder

	// Collects candidate links. Required.
	Fetcher CandidateFetcher

	// Turns candidate links into postings. Required.
	Parser PostingParser

	// Drops invalid postings. Defaults to a filter.Validator.
	Validator PostingValidator

	// Orders the accepted postings. Defaults to a ranker.Ranker.
	Ranker PostingRanker

	// A clock instance for generating time-related events. If not specified,
	// a default wall-clock implementation will be used.
	Clock clock.Clock

	// Maximum number of candidate pages fetched concurrently. Defaults to 8.
	NumOfParseWorkers int

	// Upper bound on the duration of a single search. Defaults to 30s.
	Timeout time.Duration

	// Maximum number of ranked results returned. Defaults to 50.
	MaxResults int

	// Logger instance. If not specified, a default logger instance will be
	// used.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error

	if cfg.Fetcher == nil {
		err = multierror.Append(err, fmt.Errorf("candidate fetcher not provided"))
	}

	if cfg.Parser == nil {
		err = multierror.Append(err, fmt.Errorf("posting parser not provided"))
	}

	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}

	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	if cfg.Builder == nil {
		cfg.Builder = query.NewBuilder()
	}

	if cfg.Validator == nil {
		cfg.Validator = &filter.Validator{Clock: cfg.Clock, Logger: cfg.Logger}
	}

	if cfg.Ranker == nil {
		cfg.Ranker = ranker.New(cfg.Clock)
	}

	if cfg.NumOfParseWorkers == 0 {
		cfg.NumOfParseWorkers = 8
	} else if cfg.NumOfParseWorkers < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for number of parse workers"))
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	} else if cfg.Timeout < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for search timeout"))
	}

	if cfg.MaxResults == 0 {
		cfg.MaxResults = 50
	} else if cfg.MaxResults < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for max results"))
	}

	return err
}

// Engine answers search requests with ranked job postings.
type Engine struct {
	cfg  Config
	pipe *pipeline.Pipeline
}

// New returns a new Engine instance configured with cfg.
func New(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("discovery engine: config validation failed: %w", err)
	}

	return &Engine{
		cfg: cfg,
		pipe: pipeline.New(
			pipeline.NewWorkerPool(&postingParserStage{parser: cfg.Parser}, cfg.NumOfParseWorkers),
		),
	}, nil
}

// Search discovers, validates and ranks postings matching req. The only
// error returned wraps jobs.ErrInvalidRequest; every other failure shrinks
// the result list instead. When ctx is cancelled or the search times out,
// the postings parsed so far are validated and ranked.
func (e *Engine) Search(ctx context.Context, req jobs.SearchRequest) ([]jobs.RankedResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	req = req.Normalized()
	start := e.cfg.Clock.Now()
	logger := e.cfg.Logger.WithFields(logrus.Fields{
		"role":     req.Role,
		"location": req.Location,
		"recency":  req.Recency,
	})

	runCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	queries, err := e.cfg.Builder.Build(req)
	if err != nil {
		return nil, err
	}

	candidates := e.cfg.Fetcher.Fetch(runCtx, queries, req.Recency)

	outcomes, err := e.parse(runCtx, candidates)
	if err != nil {
		logger.WithField("err", err).Warn("parse stage aborted")
	}

	var (
		postings = make([]jobs.Posting, 0, len(outcomes))
		failures = make(map[parser.Reason]int)
	)

	for _, o := range outcomes {
		if !o.OK() {
			failures[o.Failure]++
			logger.WithFields(logrus.Fields{
				"url":    o.Candidate.URL,
				"reason": o.Failure,
			}).Debug("candidate dropped")

			continue
		}

		postings = append(postings, o.Posting)
	}

	valid, report := e.cfg.Validator.Filter(postings)

	ranked := e.cfg.Ranker.Rank(req, valid)
	if len(ranked) > e.cfg.MaxResults {
		ranked = ranked[:e.cfg.MaxResults]
	}

	if ranked == nil {
		ranked = []jobs.RankedResult{}
	}

	logger.WithFields(logrus.Fields{
		"queries":    len(queries),
		"candidates": len(candidates),
		"parsed":     len(postings),
		"failures":   failures,
		"rejected":   report.Rejected,
		"results":    len(ranked),
		"elapsed":    e.cfg.Clock.Now().Sub(start).String(),
	}).Info("search completed")

	return ranked, nil
}

// parse runs the candidates through the parse pipeline and returns the
// outcomes in discovery order.
func (e *Engine) parse(ctx context.Context, candidates []jobs.CandidateURL) ([]parser.Outcome, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	sink := new(collectingSink)
	err := e.pipe.Execute(ctx, &candidateSource{candidates: candidates}, sink)

	return sink.inDiscoveryOrder(), err
}
