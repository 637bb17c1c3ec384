// Package search collects candidate posting links from a web search
// provider while honouring the provider's rate limits.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/mycok/uJobs/jobs"
)

const (
	defaultPagesPerQuery      = 3
	maxPagesPerQuery          = 4
	defaultMinRequestInterval = 500 * time.Millisecond
	defaultBackoffBase        = time.Second
	defaultMaxRetries         = 3
	defaultMaxCandidates      = 100
)

// Config defines the settings for a Fetcher.
type Config struct {
	// Search backend. Required.
	Provider Provider

	// A clock instance for generating time-related events. If not specified,
	// the default wall-clock will be used instead.
	Clock clock.Clock

	// Pages requested per query, capped at 4. Defaults to 3.
	PagesPerQuery int

	// Minimum delay between two provider calls. Defaults to 500ms; a
	// negative value disables the delay.
	MinRequestInterval time.Duration

	// First backoff applied after a rate-limited call. Doubles on every
	// consecutive rate-limited call. Defaults to 1s.
	BackoffBase time.Duration

	// Retries per query after a rate-limited call. Defaults to 3; a
	// negative value disables retries.
	MaxRetries int

	// Maximum number of candidates returned by Fetch. Defaults to 100.
	MaxCandidates int

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.Provider == nil {
		err = multierror.Append(err, fmt.Errorf("search provider not provided"))
	}

	if config.Clock == nil {
		config.Clock = clock.WallClock
	}

	if config.PagesPerQuery <= 0 {
		config.PagesPerQuery = defaultPagesPerQuery
	} else if config.PagesPerQuery > maxPagesPerQuery {
		err = multierror.Append(err, fmt.Errorf("invalid value for pages per query, must be <= %d", maxPagesPerQuery))
	}

	switch {
	case config.MinRequestInterval == 0:
		config.MinRequestInterval = defaultMinRequestInterval
	case config.MinRequestInterval < 0:
		config.MinRequestInterval = 0
	}

	if config.BackoffBase <= 0 {
		config.BackoffBase = defaultBackoffBase
	}

	switch {
	case config.MaxRetries == 0:
		config.MaxRetries = defaultMaxRetries
	case config.MaxRetries < 0:
		config.MaxRetries = 0
	}

	if config.MaxCandidates <= 0 {
		config.MaxCandidates = defaultMaxCandidates
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}

// Fetcher runs queries against a Provider and collects unique candidate
// links. A Fetcher owns its rate-limit state and may be shared by
// concurrent callers.
type Fetcher struct {
	cfg     Config
	limiter *limiter
}

// NewFetcher returns a configured Fetcher.
func NewFetcher(cfg Config) (*Fetcher, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("search fetcher: config validation failed: %w", err)
	}

	return &Fetcher{
		cfg:     cfg,
		limiter: newLimiter(cfg.Clock, cfg.MinRequestInterval, cfg.BackoffBase),
	}, nil
}

// Fetch runs every query in order and returns the candidates found, in
// discovery order, without duplicate URLs. Queries that keep failing are
// skipped. Fetch never fails: when nothing could be fetched, or ctx is
// cancelled, it returns what it collected so far.
func (f *Fetcher) Fetch(
	ctx context.Context, queries []string, recency jobs.Recency,
) []jobs.CandidateURL {

	var (
		seen       = make(map[string]struct{})
		candidates = make([]jobs.CandidateURL, 0, f.cfg.MaxCandidates)
	)

	for _, text := range queries {
		for page := 1; page <= f.cfg.PagesPerQuery; page++ {
			if ctx.Err() != nil {
				return candidates
			}

			q := Query{Text: text, Page: page, Recency: recency}

			results, err := f.query(ctx, q)
			if err != nil {
				if ctx.Err() == nil {
					f.cfg.Logger.WithFields(logrus.Fields{
						"query": text,
						"page":  page,
						"err":   err,
					}).Warn("skipping search query")
				}

				break
			}

			for _, res := range results {
				key := jobs.CanonicalURL(res.URL)
				if key == "" {
					continue
				}

				if _, dup := seen[key]; dup {
					continue
				}

				seen[key] = struct{}{}
				candidates = append(candidates, jobs.CandidateURL{URL: res.URL, Query: text})

				if len(candidates) == f.cfg.MaxCandidates {
					return candidates
				}
			}

			// A short page means there are no further results.
			if len(results) < ResultsPerPage {
				break
			}
		}
	}

	return candidates
}

func (f *Fetcher) query(ctx context.Context, q Query) ([]jobs.CandidateURL, error) {
	for retries := 0; ; retries++ {
		if err := f.limiter.reserve(ctx); err != nil {
			return nil, err
		}

		results, err := f.cfg.Provider.Query(ctx, q)
		if err == nil {
			f.limiter.reset()

			return results, nil
		}

		if !errors.Is(err, ErrRateLimited) {
			return nil, err
		}

		if retries == f.cfg.MaxRetries {
			f.limiter.reset()

			return nil, fmt.Errorf("giving up after %d retries: %w", retries, err)
		}

		backoff := f.limiter.throttled()
		f.cfg.Logger.WithFields(logrus.Fields{
			"query":   q.Text,
			"page":    q.Page,
			"backoff": backoff.String(),
		}).Debug("search provider rate limited request")
	}
}
