package config

import "errors"

// Configuration errors returned by Validate and the loaders.
// Callers compare with errors.Is.
var (
	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrNoSites is returned when the configuration lists no sites.
	ErrNoSites = errors.New("no sites configured: add at least one entry under 'sites'")

	// ErrInvalidSiteName is returned when a site has an empty name.
	ErrInvalidSiteName = errors.New("invalid site: name must not be empty")

	// ErrInvalidSiteURL is returned when a site URL is not an absolute http(s) URL.
	ErrInvalidSiteURL = errors.New("invalid site: url must be an absolute http or https URL")

	// ErrDuplicateSite is returned when two sites share the same root URL.
	ErrDuplicateSite = errors.New("duplicate site url")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the fetch concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid max concurrent fetches: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrUnsupportedLanguage is returned for a language without a morphology provider.
	ErrUnsupportedLanguage = errors.New("unsupported language: use 'russian' or 'english'")

	// ErrInvalidRateLimit is returned when the rate limit is negative.
	ErrInvalidRateLimit = errors.New("invalid rate limit: must be non-negative")

	// ErrInvalidLogFormat is returned for an unknown log format.
	ErrInvalidLogFormat = errors.New("invalid log format: use 'text' or 'json'")
)
