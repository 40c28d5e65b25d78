// Package indexer builds the inverted index of a site: for each stored
// page it counts lemmas and adds them to the site's Lemma frequencies and
// the page's Index ranks.
package indexer
