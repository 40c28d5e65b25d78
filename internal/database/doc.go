// Package database provides SQLite-based storage for sitesearch.
//
// The Store keeps four tables:
//   - sites: configured roots with their INDEXING/INDEXED/FAILED status
//   - pages: fetched documents, unique per (site, path)
//   - lemmas: per-site normalized words with accumulated frequency
//   - indexes: (page, lemma) postings carrying a rank
//
// Uniqueness is enforced by the schema, so concurrent crawler branches
// racing on the same page or posting resolve to a single row.
// The driver is modernc.org/sqlite, which needs no cgo.
package database
