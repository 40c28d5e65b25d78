// Package metrics exposes crawl, indexing and search counters in the
// Prometheus format. The /metrics endpoint of the HTTP API serves them.
package metrics
