package parser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	multierror "github.com/hashicorp/go-multierror"
)

//go:generate mockgen -package mocks -destination mocks/mock_fetcher.go github.com/mycok/uJobs/parser PageFetcher,PrivateNetworkDetector

// PageFetcher is implemented by objects that download the HTML body of a
// page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// PrivateNetworkDetector is implemented by objects that can detect whether a
// host resolves to a private network address.
type PrivateNetworkDetector interface {
	IsNetworkPrivate(host string) (bool, error)
}

// Static and compile-time check to ensure CollyFetcher implements
// PageFetcher interface.
var _ PageFetcher = (*CollyFetcher)(nil)

// CollyConfig encapsulates the settings for configuring a CollyFetcher.
type CollyConfig struct {
	// User agent sent with every request.
	UserAgent string

	// Maximum time to wait for a single page.
	Timeout time.Duration

	// Delay between two requests to the same domain and the number of
	// requests allowed to run against it in parallel.
	Delay       time.Duration
	Parallelism int

	// Pages larger than this are truncated. Zero means 2MB.
	MaxBodySize int
}

func (cfg *CollyConfig) validate() error {
	var err error

	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0 (compatible; uJobs/1.0)"
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	} else if cfg.Timeout < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for fetch timeout"))
	}

	if cfg.Delay < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for per-domain delay"))
	}

	if cfg.Parallelism == 0 {
		cfg.Parallelism = 2
	} else if cfg.Parallelism < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for per-domain parallelism"))
	}

	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = 2 << 20
	}

	return err
}

// CollyFetcher downloads pages with a colly collector shared by all calls.
type CollyFetcher struct {
	collector *colly.Collector
}

// NewCollyFetcher returns a new fetcher instance configured with cfg.
func NewCollyFetcher(cfg CollyConfig) (*CollyFetcher, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("page fetcher: config validation failed: %w", err)
	}

	c := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.MaxBodySize(cfg.MaxBodySize),
	)
	c.SetRequestTimeout(cfg.Timeout)

	err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: cfg.Parallelism,
		Delay:       cfg.Delay,
	})
	if err != nil {
		return nil, fmt.Errorf("page fetcher: %w", err)
	}

	return &CollyFetcher{collector: c}, nil
}

// Fetch implements PageFetcher. Only successful responses carrying HTML are
// returned.
func (f *CollyFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	// Clones share the limiter and the HTTP backend of the parent but keep
	// their own callbacks, so concurrent calls do not see each other.
	c := f.collector.Clone()
	c.Context = ctx

	var (
		body     []byte
		fetchErr error
	)

	c.OnResponse(func(r *colly.Response) {
		contentType := r.Headers.Get("Content-Type")
		if !strings.Contains(contentType, "html") {
			fetchErr = fmt.Errorf("unexpected content type %q", contentType)

			return
		}

		body = r.Body
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			fetchErr = fmt.Errorf("unexpected status %d: %w", r.StatusCode, err)

			return
		}

		fetchErr = err
	})

	if err := c.Visit(url); err != nil {
		return nil, err
	}

	c.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}

	if body == nil {
		return nil, fmt.Errorf("empty response for %s", url)
	}

	return body, nil
}
