// Package log builds the slog loggers used across sitesearch.
//
// Every logger returned by NewLogger wraps its text or JSON handler in a
// RedactHandler, so crawled URLs carrying credentials and page bodies
// accidentally attached to a record stay out of the log stream.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose, "text")
//	logger.Warn("fetch failed", "url", pageURL, "error", err)
package log
