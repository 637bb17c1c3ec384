// Package cse implements a search.Provider backed by the Google Custom
// Search JSON API.
package cse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/mycok/uJobs/jobs"
	"github.com/mycok/uJobs/search"
)

// Static and compile-time check to ensure Provider implements
// search.Provider interface.
var _ search.Provider = (*Provider)(nil)

// Reasons reported by the API alongside a 403 when a quota is exhausted.
var rateLimitReasons = map[string]struct{}{
	"rateLimitExceeded":     {},
	"userRateLimitExceeded": {},
	"dailyLimitExceeded":    {},
	"quotaExceeded":         {},
}

// Provider queries a programmable search engine.
type Provider struct {
	svc *customsearch.Service
	cx  string

	// Country and language restrictions sent with every query.
	country  string
	language string
}

// New returns a Provider for the search engine identified by cx. Extra
// client options (custom endpoint, HTTP client) may be supplied.
func New(ctx context.Context, apiKey, cx string, opts ...option.ClientOption) (*Provider, error) {
	if apiKey == "" || cx == "" {
		return nil, errors.New("cse: api key and search engine id must be provided")
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)

	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("cse: %w", err)
	}

	return &Provider{
		svc:      svc,
		cx:       cx,
		country:  "us",
		language: "lang_en",
	}, nil
}

// Query returns one page of result links for q.
func (p *Provider) Query(ctx context.Context, q search.Query) ([]jobs.CandidateURL, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}

	res, err := p.svc.Cse.List().
		Cx(p.cx).
		Q(q.Text).
		DateRestrict(q.Recency.DateRestrict()).
		Gl(p.country).
		Lr(p.language).
		Num(search.ResultsPerPage).
		Start(int64(1 + (page-1)*search.ResultsPerPage)).
		Context(ctx).
		Do()
	if err != nil {
		if isRateLimited(err) {
			return nil, fmt.Errorf("cse: %w", search.ErrRateLimited)
		}

		return nil, fmt.Errorf("cse: %w", err)
	}

	links := make([]jobs.CandidateURL, 0, len(res.Items))
	for _, item := range res.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}

		links = append(links, jobs.CandidateURL{URL: link, Query: q.Text})
	}

	return links, nil
}

func isRateLimited(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}

	if apiErr.Code == http.StatusTooManyRequests {
		return true
	}

	if apiErr.Code != http.StatusForbidden {
		return false
	}

	for _, item := range apiErr.Errors {
		if _, ok := rateLimitReasons[item.Reason]; ok {
			return true
		}
	}

	return false
}
