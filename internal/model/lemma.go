package model

// Lemma is a normalized word form seen on a site.
// (SiteID, Lemma) is unique.
type Lemma struct {
	ID     int64  `json:"id"`
	SiteID int64  `json:"site_id"`
	Lemma  string `json:"lemma"`

	// Frequency accumulates the lemma's occurrence count over all pages of the site.
	Frequency int `json:"frequency"`
}

// Index is the posting linking a Page to a Lemma.
// (PageID, LemmaID) is unique.
type Index struct {
	ID      int64 `json:"id"`
	PageID  int64 `json:"page_id"`
	LemmaID int64 `json:"lemma_id"`

	// Rank is the number of occurrences of the lemma on the page.
	Rank float64 `json:"rank"`
}
