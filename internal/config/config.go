package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "sitesearch"

	// DefaultTimeout is the per-request fetch timeout. It bounds a single
	// page download, never the whole crawl.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxConcurrentFetches bounds the number of in-flight page
	// downloads across all sites of one crawl run.
	DefaultMaxConcurrentFetches = 8

	// DefaultUserAgent identifies the crawler in HTTP requests.
	DefaultUserAgent = "SiteSearchBot/1.0 (+https://github.com/nao1215/sitesearch)"

	// DefaultReferrer is sent as the Referer header on every fetch.
	DefaultReferrer = "https://www.google.com"

	// DefaultMaxBodySize limits the response body size to read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultLanguage selects the morphology dictionary and alphabet.
	DefaultLanguage = "russian"

	// DefaultListenAddress is the address the HTTP API binds to.
	DefaultListenAddress = ":8080"

	// DefaultRateLimit is the number of search requests allowed per client IP per minute.
	DefaultRateLimit = 100

	// DefaultLogFormat is the slog handler used for diagnostics.
	DefaultLogFormat = "text"
)

// Supported languages.
const (
	LanguageRussian = "russian"
	LanguageEnglish = "english"
)

// Config holds all configuration options for sitesearch.
// It is assembled from the YAML file, environment variables and CLI flags,
// in that order of increasing precedence, and then passed explicitly to
// every component.
type Config struct {
	// Sites is the ordered list of sites to crawl and search.
	Sites []Site

	// UserAgent is the User-Agent header sent with every fetch.
	UserAgent string

	// Referrer is the Referer header sent with every fetch.
	Referrer string

	// Timeout is the per-request fetch timeout.
	Timeout time.Duration

	// MaxConcurrentFetches is the upper bound on in-flight fetches in one crawl run.
	MaxConcurrentFetches int

	// MaxBodySize is the maximum response body size in bytes to read.
	// Larger responses are truncated.
	MaxBodySize int64

	// RespectRobots makes the crawler consult robots.txt before fetching.
	RespectRobots bool

	// Language is either "russian" or "english".
	Language string

	// ListenAddress is the bind address of the HTTP API.
	ListenAddress string

	// RateLimit is the per-IP search request budget per minute. Zero disables limiting.
	RateLimit int

	// AllowedOrigins lists CORS origins for the HTTP API. Empty disables CORS headers.
	AllowedOrigins []string

	// DBDir is the directory holding the SQLite database.
	// Defaults to the XDG data directory (~/.local/share/sitesearch on Linux).
	DBDir string

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat is "text" or "json".
	LogFormat string

	// ConfigFilePath is the path of the loaded configuration file, if any.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		UserAgent:            DefaultUserAgent,
		Referrer:             DefaultReferrer,
		Timeout:              DefaultTimeout,
		MaxConcurrentFetches: DefaultMaxConcurrentFetches,
		MaxBodySize:          DefaultMaxBodySize,
		Language:             DefaultLanguage,
		ListenAddress:        DefaultListenAddress,
		RateLimit:            DefaultRateLimit,
		DBDir:                XDGDataDir(),
		LogFormat:            DefaultLogFormat,
	}
}

// XDGDataDir returns the XDG data directory for sitesearch.
// On Linux: ~/.local/share/sitesearch
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sitesearch.
// On Linux: ~/.config/sitesearch
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error (possibly wrapped).
func (c *Config) Validate() error {
	if len(c.Sites) == 0 {
		return ErrNoSites
	}

	seen := make(map[string]struct{}, len(c.Sites))
	for _, s := range c.Sites {
		if err := s.Validate(); err != nil {
			return err
		}
		scope := s.Scope()
		if _, ok := seen[scope]; ok {
			return ErrDuplicateSite
		}
		seen[scope] = struct{}{}
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxConcurrentFetches <= 0 {
		return ErrInvalidConcurrency
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.Language != LanguageRussian && c.Language != LanguageEnglish {
		return ErrUnsupportedLanguage
	}
	if c.RateLimit < 0 {
		return ErrInvalidRateLimit
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return ErrInvalidLogFormat
	}
	return nil
}

// FindSite returns the configured site whose scope is a prefix of rawURL.
func (c *Config) FindSite(rawURL string) (Site, bool) {
	for _, s := range c.Sites {
		if s.Contains(rawURL) {
			return s, true
		}
	}
	return Site{}, false
}
