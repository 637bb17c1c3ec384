// Package query turns a search request into the list of web search queries
// used to discover job postings.
package query

import (
	"fmt"
	"strings"

	"github.com/mycok/uJobs/jobs"
)

// DefaultMaxQueries caps the number of queries built for a single request.
const DefaultMaxQueries = 10

// Builder generates search queries for a request.
type Builder struct {
	// Maximum number of queries returned. Defaults to DefaultMaxQueries.
	MaxQueries int

	// Boards targeted by site-restricted queries. Defaults to
	// jobs.KnownBoards.
	Boards []jobs.BoardInfo
}

// NewBuilder returns a Builder with default settings.
func NewBuilder() *Builder {
	return &Builder{
		MaxQueries: DefaultMaxQueries,
		Boards:     jobs.KnownBoards,
	}
}

// Build returns an ordered, de-duplicated list of query strings for req.
// The list always holds at least one query. An error wrapping
// jobs.ErrInvalidRequest is returned when the role is empty.
func (b *Builder) Build(req jobs.SearchRequest) ([]string, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("build queries: %w", err)
	}

	req = req.Normalized()

	limit := b.MaxQueries
	if limit <= 0 {
		limit = DefaultMaxQueries
	}

	boards := b.Boards
	if boards == nil {
		boards = jobs.KnownBoards
	}

	candidates := make([]string, 0, len(boards)+2)

	natural := req.Role + " jobs"
	if req.Location != "" {
		natural += " in " + req.Location
	}
	candidates = append(candidates, natural+" "+req.Recency.Hint())

	candidates = append(candidates, req.Role+" "+req.Location)

	for _, board := range boards {
		if board.Site == "" {
			continue
		}

		candidates = append(
			candidates,
			fmt.Sprintf("%s site:%s %s", req.Role, board.Site, req.Location),
		)
	}

	var (
		seen    = make(map[string]struct{}, len(candidates))
		queries = make([]string, 0, limit)
	)

	for _, q := range candidates {
		q = strings.Join(strings.Fields(q), " ")
		key := strings.ToLower(q)

		if _, dup := seen[key]; dup || q == "" {
			continue
		}

		seen[key] = struct{}{}
		queries = append(queries, q)

		if len(queries) == limit {
			break
		}
	}

	return queries, nil
}
