// Package server exposes crawl control, search, statistics and metrics
// over HTTP using a chi router.
//
// Every /api response is JSON with a boolean "result" and, on failure, an
// "error" message. Rejected crawl state transitions answer 409 Conflict and
// invalid input answers 400 Bad Request.
package server
