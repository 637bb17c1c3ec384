package cdb

import (
	"database/sql"
	"fmt"

	"github.com/mycok/uJobs/jobs"
)

// Static and compile-time check to ensure postingIterator implements
// jobs.Iterator interface.
var _ jobs.Iterator = (*postingIterator)(nil)

// postingIterator wraps the rows returned by a search query.
type postingIterator struct {
	rows    *sql.Rows
	total   uint64
	lastErr error
	posting *jobs.Posting
}

// Next loads the next posting. It returns false when no more rows are
// available or when an error occurs.
func (i *postingIterator) Next() bool {
	if i.lastErr != nil || !i.rows.Next() {
		return false
	}

	i.posting, i.lastErr = scanPosting(i.rows)

	return i.lastErr == nil
}

// Error returns the last error encountered by the iterator.
func (i *postingIterator) Error() error {
	if i.lastErr != nil {
		return i.lastErr
	}

	return i.rows.Err()
}

// Close releases the underlying rows.
func (i *postingIterator) Close() error {
	if err := i.rows.Close(); err != nil {
		return fmt.Errorf("posting iterator: %w", err)
	}

	return nil
}

// Posting returns the current posting.
func (i *postingIterator) Posting() *jobs.Posting { return i.posting }

// TotalCount returns the number of postings matching the search, ignoring
// the offset.
func (i *postingIterator) TotalCount() uint64 { return i.total }
