package model

import (
	"fmt"
	"time"
)

// SiteStatus is the indexing lifecycle state of a Site.
//
// Transitions: INDEXING -> INDEXED on normal completion,
// INDEXING -> FAILED on an unexpected error or user stop.
// A fresh crawl deletes the previous row and starts again at INDEXING.
type SiteStatus string

const (
	// StatusIndexing means a crawl of the site is in progress.
	StatusIndexing SiteStatus = "INDEXING"

	// StatusIndexed means the last crawl completed.
	StatusIndexed SiteStatus = "INDEXED"

	// StatusFailed means the last crawl stopped early; Site.LastError says why.
	StatusFailed SiteStatus = "FAILED"
)

// String returns the status name as stored in the database.
func (s SiteStatus) String() string {
	return string(s)
}

// Valid reports whether s is one of the known statuses.
func (s SiteStatus) Valid() bool {
	switch s {
	case StatusIndexing, StatusIndexed, StatusFailed:
		return true
	default:
		return false
	}
}

// ParseSiteStatus converts a stored status string into a SiteStatus.
func ParseSiteStatus(s string) (SiteStatus, error) {
	status := SiteStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown site status %q", s)
	}
	return status, nil
}

// Site is a configured crawl target together with its indexing state.
type Site struct {
	// ID is the database identifier.
	ID int64 `json:"id"`

	// Name is the configured display name.
	Name string `json:"name"`

	// URL is the site root, always ending with a slash. It is the scope
	// prefix for every page of the site.
	URL string `json:"url"`

	// Status is the current lifecycle state.
	Status SiteStatus `json:"status"`

	// StatusTime is updated on every status change and every page saved.
	StatusTime time.Time `json:"status_time"`

	// LastError describes why the site is FAILED. Empty otherwise.
	LastError string `json:"last_error,omitempty"`
}

// IsIndexing reports whether the site is currently being crawled.
func (s *Site) IsIndexing() bool {
	return s.Status == StatusIndexing
}
