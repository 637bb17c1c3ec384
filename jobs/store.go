package jobs

import "github.com/google/uuid"

// Store should be implemented by objects that can persist and search
// accepted postings.
type Store interface {
	// Upsert creates a new or updates an existing posting, matched by its
	// canonical URL. New postings are assigned an ID which is written back
	// to p.
	Upsert(p *Posting) error

	// FindByID looks up a posting by its ID.
	FindByID(id uuid.UUID) (*Posting, error)

	// FindByURL looks up a posting by its canonical URL.
	FindByURL(url string) (*Posting, error)

	// Search performs a full-text look up over stored postings and returns
	// a result iterator if successful or an error otherwise.
	Search(q StoreQuery) (Iterator, error)
}

// Iterator should be implemented by objects that can paginate stored
// postings.
type Iterator interface {
	// Next loads the next item, returns false when no more items
	// are available or when an error occurs.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// Close releases any resources allocated to the iterator.
	Close() error

	// Posting returns the current posting from the result set.
	Posting() *Posting

	// TotalCount returns the approximated total number of search results.
	TotalCount() uint64
}

// StoreQuery defines a full-text search over stored postings.
type StoreQuery struct {
	// Terms to match against title, company, location and description.
	Expression string

	// Cursor into the result set.
	Offset uint64
}
