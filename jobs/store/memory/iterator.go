package memory

import (
	"fmt"

	"github.com/blevesearch/bleve"
	"github.com/google/uuid"

	"github.com/mycok/uJobs/jobs"
)

// Static and compile-time check to ensure postingIterator implements
// jobs.Iterator interface.
var _ jobs.Iterator = (*postingIterator)(nil)

// postingIterator pages through bleve search results.
type postingIterator struct {
	store     *InMemoryStore
	searchReq *bleve.SearchRequest
	searchRes *bleve.SearchResult

	// Absolute position in the result list.
	cumIdx uint64

	// Position in the current page of hits.
	pageIdx int

	posting *jobs.Posting
	lastErr error
}

// Next loads the next posting. It returns false when no more postings are
// available or when an error occurs.
func (i *postingIterator) Next() bool {
	if i.lastErr != nil || i.searchRes == nil || i.cumIdx >= i.searchRes.Total {
		return false
	}

	if i.pageIdx >= i.searchRes.Hits.Len() {
		i.searchReq.From += i.searchReq.Size
		if i.searchRes, i.lastErr = i.store.idx.Search(i.searchReq); i.lastErr != nil {
			return false
		}

		if i.searchRes.Hits.Len() == 0 {
			return false
		}

		i.pageIdx = 0
	}

	id, err := uuid.Parse(i.searchRes.Hits[i.pageIdx].ID)
	if err != nil {
		i.lastErr = fmt.Errorf("search: %w", err)

		return false
	}

	if i.posting, i.lastErr = i.store.FindByID(id); i.lastErr != nil {
		return false
	}

	i.pageIdx++
	i.cumIdx++

	return true
}

// Posting returns the current posting.
func (i *postingIterator) Posting() *jobs.Posting { return i.posting }

// TotalCount returns the total number of matching postings.
func (i *postingIterator) TotalCount() uint64 {
	if i.searchRes == nil {
		return 0
	}

	return i.searchRes.Total
}

// Error returns the last error encountered by the iterator.
func (i *postingIterator) Error() error { return i.lastErr }

// Close releases the iterator's reference to the store.
func (i *postingIterator) Close() error {
	i.store = nil
	i.searchReq = nil

	if i.searchRes != nil {
		i.cumIdx = i.searchRes.Total
	}

	return nil
}
