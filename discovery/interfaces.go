package discovery

import (
	"context"

	"github.com/mycok/uJobs/filter"
	"github.com/mycok/uJobs/jobs"
	"github.com/mycok/uJobs/parser"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/mycok/uJobs/discovery QueryBuilder,CandidateFetcher,PostingParser

// QueryBuilder turns a search request into web search queries.
type QueryBuilder interface {
	Build(req jobs.SearchRequest) ([]string, error)
}

// CandidateFetcher collects candidate posting links for a set of queries.
type CandidateFetcher interface {
	Fetch(ctx context.Context, queries []string, recency jobs.Recency) []jobs.CandidateURL
}

// PostingParser extracts a posting from the page behind a candidate link.
type PostingParser interface {
	Parse(ctx context.Context, candidate jobs.CandidateURL) parser.Outcome
}

// PostingValidator drops invalid and duplicate postings.
type PostingValidator interface {
	Filter(postings []jobs.Posting) ([]jobs.Posting, filter.Report)
}

// PostingRanker orders postings by relevance.
type PostingRanker interface {
	Rank(req jobs.SearchRequest, postings []jobs.Posting) []jobs.RankedResult
}
