package api

import (
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/mycok/uJobs/cache"
	"github.com/mycok/uJobs/jobs"
)

//go:generate mockgen -package mocks -destination mocks/mock_searcher.go github.com/mycok/uJobs/monolith/service/api JobSearcher

const (
	defaultNumOfResultsPerPage = 10
	defaultMaxSummaryLength    = 256
)

// JobSearcher runs a live discovery search.
type JobSearcher interface {
	Search(ctx context.Context, req jobs.SearchRequest) ([]jobs.RankedResult, error)
}

// Config defines configurations for the API service.
type Config struct {
	// Runs live searches.
	Searcher JobSearcher

	// Live search results are saved here; the listing endpoints read from it.
	Store jobs.Store

	// Optional result cache. When nil, every search runs the pipeline.
	Cache cache.Cache

	// Address to listen for incoming requests.
	ListenAddr string

	// Number of stored postings returned per page. If not specified, a
	// default value of 10 will be used instead.
	NumOfResultsPerPage int

	// Maximum length of the description summary returned with stored
	// postings. If not specified, a default value of 256 will be used instead.
	MaxSummaryLength int

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

	if config.ListenAddr == "" {
		err = multierror.Append(err, fmt.Errorf("listen address not provided"))
	}

	if config.NumOfResultsPerPage <= 0 {
		config.NumOfResultsPerPage = defaultNumOfResultsPerPage
	}

	if config.MaxSummaryLength <= 0 {
		config.MaxSummaryLength = defaultMaxSummaryLength
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
