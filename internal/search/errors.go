package search

import "errors"

var (
	// ErrEmptyQuery is returned for a blank query.
	ErrEmptyQuery = errors.New("empty search query")

	// ErrIndexingInProgress is returned while any site is being indexed.
	ErrIndexingInProgress = errors.New("indexing is in progress, search is unavailable")

	// ErrNoMatches is returned when no page matches the query.
	ErrNoMatches = errors.New("no matches found")
)
