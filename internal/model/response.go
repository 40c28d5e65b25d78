package model

// IndexingResponse is returned by the start, stop and index-page operations.
type IndexingResponse struct {
	Result bool   `json:"result"`
	Error  string `json:"error,omitempty"`
}

// Succeeded returns a successful IndexingResponse.
func Succeeded() IndexingResponse {
	return IndexingResponse{Result: true}
}

// Failed returns a failed IndexingResponse carrying err's message.
func Failed(err error) IndexingResponse {
	return IndexingResponse{Result: false, Error: err.Error()}
}

// SearchResult is one ranked page returned by a search.
type SearchResult struct {
	// Site is the site root URL without the trailing slash.
	Site string `json:"site"`

	// SiteName is the configured site name.
	SiteName string `json:"siteName"`

	// URI is the page path relative to the site root.
	URI string `json:"uri"`

	// Title is the text of the page's first title element.
	Title string `json:"title"`

	// Snippet is a fragment of the page text with matches wrapped in <b> tags.
	Snippet string `json:"snippet"`

	// Relevance is the normalized score. The best page scores 1.0 and
	// weaker pages score higher (max relevance divided by own relevance).
	Relevance float64 `json:"relevance"`
}

// SearchResponse is the outcome of a search.
// Count is the number of matching pages before offset and limit are applied.
type SearchResponse struct {
	Result bool           `json:"result"`
	Count  int            `json:"count"`
	Data   []SearchResult `json:"data"`
	Error  string         `json:"error,omitempty"`
}

// SearchFailed returns a failed SearchResponse carrying err's message.
func SearchFailed(err error) SearchResponse {
	return SearchResponse{Result: false, Count: 0, Data: []SearchResult{}, Error: err.Error()}
}
