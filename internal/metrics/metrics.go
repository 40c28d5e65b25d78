package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sitesearch"

// Metrics holds the Prometheus collectors of one process.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	pagesFetched   *prometheus.CounterVec
	fetchErrors    *prometheus.CounterVec
	pagesIndexed   prometheus.Counter
	indexErrors    prometheus.Counter
	lemmaUpserts   prometheus.Counter
	crawlRuns      *prometheus.CounterVec
	sitesIndexing  prometheus.Gauge
	searchRequests *prometheus.CounterVec
	searchDuration prometheus.Histogram
}

// New creates the collectors and registers them, together with the Go
// runtime and process collectors, on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		pagesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_fetched_total",
			Help:      "Pages fetched and stored, by site.",
		}, []string{"site"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Abandoned fetches, by error kind.",
		}, []string{"kind"}),
		pagesIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_indexed_total",
			Help:      "Pages whose lemmas were written to the index.",
		}),
		indexErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_errors_total",
			Help:      "Pages whose indexing failed.",
		}),
		lemmaUpserts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lemma_upserts_total",
			Help:      "Lemma rows created or incremented.",
		}),
		crawlRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crawl_runs_total",
			Help:      "Finished crawl runs, by outcome.",
		}, []string{"outcome"}),
		sitesIndexing: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sites_indexing",
			Help:      "Sites currently being crawled.",
		}),
		searchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Search requests, by result.",
		}, []string{"result"}),
		searchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Search latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.pagesFetched,
		m.fetchErrors,
		m.pagesIndexed,
		m.indexErrors,
		m.lemmaUpserts,
		m.crawlRuns,
		m.sitesIndexing,
		m.searchRequests,
		m.searchDuration,
	)
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// PageFetched counts a stored page of site.
func (m *Metrics) PageFetched(site string) {
	if m == nil {
		return
	}
	m.pagesFetched.WithLabelValues(site).Inc()
}

// FetchFailed counts an abandoned fetch of the given kind.
func (m *Metrics) FetchFailed(kind string) {
	if m == nil {
		return
	}
	m.fetchErrors.WithLabelValues(kind).Inc()
}

// PageIndexed counts an indexed page and the lemma rows it touched.
func (m *Metrics) PageIndexed(lemmas int) {
	if m == nil {
		return
	}
	m.pagesIndexed.Inc()
	m.lemmaUpserts.Add(float64(lemmas))
}

// IndexFailed counts a page whose indexing failed.
func (m *Metrics) IndexFailed() {
	if m == nil {
		return
	}
	m.indexErrors.Inc()
}

// CrawlStarted records sites entering INDEXING.
func (m *Metrics) CrawlStarted(sites int) {
	if m == nil {
		return
	}
	m.sitesIndexing.Add(float64(sites))
}

// CrawlFinished records the end of a run over sites with the given outcome
// ("completed" or "stopped").
func (m *Metrics) CrawlFinished(sites int, outcome string) {
	if m == nil {
		return
	}
	m.sitesIndexing.Sub(float64(sites))
	m.crawlRuns.WithLabelValues(outcome).Inc()
}

// SearchServed records a search request and its latency.
func (m *Metrics) SearchServed(ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "rejected"
	}
	m.searchRequests.WithLabelValues(result).Inc()
	m.searchDuration.Observe(elapsed.Seconds())
}
