package watcher

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/mycok/uJobs/jobs"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/mycok/uJobs/monolith/service/watcher JobSearcher,Publisher

// JobSearcher runs a live discovery search.
type JobSearcher interface {
	Search(ctx context.Context, req jobs.SearchRequest) ([]jobs.RankedResult, error)
}

// Publisher announces postings that were stored for the first time.
type Publisher interface {
	Publish(ctx context.Context, postings []jobs.Posting) error
}

// Config defines configurations for the saved-search watcher service.
type Config struct {
	// Runs the saved searches.
	Searcher JobSearcher

	// Results are saved here. A posting is new when its URL is not stored
	// yet.
	Store jobs.Store

	// Optional sink for new postings.
	Publisher Publisher

	// Searches to run on every pass.
	Searches []jobs.SearchRequest

	// A clock instance for generating time-related events. If not specified,
	// the default wall-clock will be used instead.
	Clock clock.Clock

	// The duration between subsequent passes.
	Interval time.Duration

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.Searcher == nil {
		err = multierror.Append(err, fmt.Errorf("job searcher not provided"))
	}

	if config.Store == nil {
		err = multierror.Append(err, fmt.Errorf("posting store not provided"))
	}

	if len(config.Searches) == 0 {
		err = multierror.Append(err, fmt.Errorf("saved searches not provided"))
	}

	for i, req := range config.Searches {
		if reqErr := req.Validate(); reqErr != nil {
			err = multierror.Append(err, fmt.Errorf("saved search %d: %w", i, reqErr))
		}
	}

	if config.Clock == nil {
		config.Clock = clock.WallClock
	}

	if config.Interval <= 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for watch interval"))
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
