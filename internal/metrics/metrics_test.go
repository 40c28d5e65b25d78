package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// scrape returns the exposition text served by m.Handler.
func scrape(t *testing.T, m *Metrics) string {
	t.Helper()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func TestNilMetricsIsSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.PageFetched("x")
	m.FetchFailed("timeout")
	m.PageIndexed(3)
	m.IndexFailed()
	m.CrawlStarted(1)
	m.CrawlFinished(1, "completed")
	m.SearchServed(true, time.Millisecond)
}

func TestCounters(t *testing.T) {
	t.Parallel()

	m := New()
	m.PageFetched("Example")
	m.PageFetched("Example")
	m.FetchFailed("status")
	m.PageIndexed(5)
	m.CrawlStarted(2)
	m.CrawlFinished(2, "stopped")
	m.SearchServed(false, 10*time.Millisecond)

	out := scrape(t, m)
	for _, want := range []string{
		`sitesearch_pages_fetched_total{site="Example"} 2`,
		`sitesearch_fetch_errors_total{kind="status"} 1`,
		`sitesearch_lemma_upserts_total 5`,
		`sitesearch_sites_indexing 0`,
		`sitesearch_crawl_runs_total{outcome="stopped"} 1`,
		`sitesearch_search_requests_total{result="rejected"} 1`,
		`sitesearch_search_duration_seconds_count 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in exposition", want)
		}
	}
}
