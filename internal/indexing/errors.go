package indexing

import "errors"

// Messages reported to clients in IndexingResponse.Error and stored as Site.LastError.
var (
	// ErrAlreadyStarted is returned by StartIndexing while a crawl is running.
	ErrAlreadyStarted = errors.New("indexing has already started")

	// ErrNotStarted is returned by StopIndexing when nothing is being crawled.
	ErrNotStarted = errors.New("indexing not started")

	// ErrStoppedByUser is stored on sites whose crawl was stopped.
	ErrStoppedByUser = errors.New("indexing has been stopped by user")

	// ErrOutsideSites is returned by IndexPage for URLs outside every configured site.
	ErrOutsideSites = errors.New("this page is outside the sites specified in the configuration file")

	// ErrInterrupted is stored on sites left INDEXING by a previous process.
	ErrInterrupted = errors.New("indexing was interrupted by a restart")

	// errPageSkipped marks a page that needs no work: already stored,
	// reserved by another branch, or abandoned after a stop.
	errPageSkipped = errors.New("page skipped")
)

// fetchError wraps a transient fetch failure. The branch is abandoned
// but the site keeps crawling.
type fetchError struct {
	err error
}

func (e *fetchError) Error() string { return e.err.Error() }

func (e *fetchError) Unwrap() error { return e.err }
