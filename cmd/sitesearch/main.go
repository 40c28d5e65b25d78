// Package main provides the entry point for the sitesearch CLI.
//
// sitesearch crawls a configured set of web sites, builds a lemma-based
// inverted index in SQLite and answers free-text queries against it.
//
// Usage:
//
//	sitesearch init
//	sitesearch crawl
//	sitesearch search "query words"
//	sitesearch serve
//
// See --help for all available options.
package main

func main() {
	Execute()
}
