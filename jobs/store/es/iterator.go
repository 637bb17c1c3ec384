package es

import (
	"github.com/elastic/go-elasticsearch/v8"

	"github.com/mycok/uJobs/jobs"
)

// Static and compile-time check to ensure esIterator implements
// jobs.Iterator interface.
var _ jobs.Iterator = (*esIterator)(nil)

// esIterator pages through elasticsearch search results.
type esIterator struct {
	client    *elasticsearch.Client
	searchReq map[string]interface{}
	searchRes *esSearchRes

	// Absolute position in the result list.
	cumIdx uint64

	// Position in the current page of hits.
	searchResIdx int

	posting *jobs.Posting
	lastErr error
}

// Next loads the next posting. It returns false when no more postings are
// available or when an error occurs.
func (i *esIterator) Next() bool {
	if i.lastErr != nil || i.searchRes == nil ||
		i.cumIdx >= i.searchRes.Hits.Total.Count {

		return false
	}

	if i.searchResIdx >= len(i.searchRes.Hits.HitList) {
		i.searchReq["from"] = i.searchReq["from"].(uint64) + batchSize
		i.searchRes, i.lastErr = performSearch(i.client, i.searchReq)
		if i.lastErr != nil {
			return false
		}

		if len(i.searchRes.Hits.HitList) == 0 {
			return false
		}

		i.searchResIdx = 0
	}

	i.posting, i.lastErr = esDocToPosting(&i.searchRes.Hits.HitList[i.searchResIdx].DocSource)
	if i.lastErr != nil {
		return false
	}

	i.searchResIdx++
	i.cumIdx++

	return true
}

// Posting returns the current posting.
func (i *esIterator) Posting() *jobs.Posting { return i.posting }

// TotalCount returns the approximated total number of search results.
func (i *esIterator) TotalCount() uint64 {
	if i.searchRes == nil {
		return 0
	}

	return i.searchRes.Hits.Total.Count
}

// Error returns the last error encountered by the iterator.
func (i *esIterator) Error() error { return i.lastErr }

// Close releases any resources allocated to the iterator.
func (i *esIterator) Close() error {
	i.client = nil
	i.searchReq = nil

	if i.searchRes != nil {
		i.cumIdx = i.searchRes.Hits.Total.Count
	}

	return nil
}
