package model

// StatisticsResponse wraps the statistics payload.
type StatisticsResponse struct {
	Result     bool           `json:"result"`
	Statistics StatisticsData `json:"statistics"`
	Error      string         `json:"error,omitempty"`
}

// StatisticsData holds aggregate and per-site counts.
type StatisticsData struct {
	Total    TotalStatistics          `json:"total"`
	Detailed []DetailedStatisticsItem `json:"detailed"`
}

// TotalStatistics aggregates all configured sites.
type TotalStatistics struct {
	Sites    int   `json:"sites"`
	Pages    int64 `json:"pages"`
	Lemmas   int64 `json:"lemmas"`
	Indexing bool  `json:"indexing"`
}

// DetailedStatisticsItem describes one configured site.
// Status is empty and StatusTime zero for sites never crawled.
type DetailedStatisticsItem struct {
	URL        string `json:"url"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	StatusTime int64  `json:"statusTime"`
	Error      string `json:"error"`
	Pages      int64  `json:"pages"`
	Lemmas     int64  `json:"lemmas"`
}
