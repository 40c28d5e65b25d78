// Package model defines the data structures shared across sitesearch:
// the persisted Site, Page, Lemma and Index records and the response
// payloads of the indexing, search and statistics operations.
//
// The types live in their own package so the database, indexing, search
// and server packages can share them without import cycles.
package model
