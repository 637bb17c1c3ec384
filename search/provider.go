package search

import (
	"context"
	"errors"

	"github.com/mycok/uJobs/jobs"
)

//go:generate mockgen -package mocks -destination mocks/mock_provider.go github.com/mycok/uJobs/search Provider

// ErrRateLimited is returned (possibly wrapped) by a Provider when the
// upstream search API throttles the caller.
var ErrRateLimited = errors.New("rate limited")

// ResultsPerPage is the number of links a provider returns per page.
const ResultsPerPage = 10

// Query identifies one page of results for a query string.
type Query struct {
	Text string

	// 1-based page number.
	Page int

	// Restricts results to recently published pages.
	Recency jobs.Recency
}

// Provider is implemented by web search backends.
type Provider interface {
	// Query returns one page of candidate links. An error wrapping
	// ErrRateLimited signals throttling; any other error is treated as a
	// provider failure.
	Query(ctx context.Context, q Query) ([]jobs.CandidateURL, error)
}
