// Package cache stores ranked search results for a short time so repeated
// requests skip the discovery pipeline.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/mycok/uJobs/jobs"
)

//go:generate mockgen -package mocks -destination mocks/mock_cache.go github.com/mycok/uJobs/cache Cache

// DefaultTTL is how long results stay cached unless configured otherwise.
const DefaultTTL = 15 * time.Minute

// Cache is implemented by objects that can store search results by key.
type Cache interface {
	// Get returns the results stored under key. The boolean is false when
	// the key is missing or expired.
	Get(ctx context.Context, key string) ([]jobs.RankedResult, bool, error)

	// Set stores results under key, replacing any previous value.
	Set(ctx context.Context, key string, results []jobs.RankedResult) error
}

// Key returns the cache key for req. Requests that normalize to the same
// role, location and recency share a key regardless of letter case.
func Key(req jobs.SearchRequest) string {
	req = req.Normalized()

	h := sha256.New()
	h.Write([]byte(strings.ToLower(req.Role)))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(req.Location)))
	h.Write([]byte{0})
	h.Write([]byte(req.Recency))

	return "ujobs:search:" + hex.EncodeToString(h.Sum(nil))
}

func cloneResults(results []jobs.RankedResult) []jobs.RankedResult {
	if results == nil {
		return nil
	}

	out := make([]jobs.RankedResult, len(results))
	for i, r := range results {
		out[i] = jobs.RankedResult{Posting: r.Posting.Clone(), Score: r.Score, Rank: r.Rank}
	}

	return out
}
