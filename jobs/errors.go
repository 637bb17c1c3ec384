package jobs

import "errors"

var (
	// ErrInvalidRequest is returned when a search request cannot be served,
	// for example when the role is missing.
	ErrInvalidRequest = errors.New("invalid search request")

	// ErrNotFound is returned by a store when it attempts to look up
	// a posting that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMissingURL is returned when a store attempts to persist a posting
	// without a canonical URL.
	ErrMissingURL = errors.New("posting has missing / invalid url")
)
