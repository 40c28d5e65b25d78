package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Site is one configured crawl target.
type Site struct {
	// Name is the human readable site name shown in statistics and results.
	Name string `yaml:"name"`

	// URL is the root URL of the site. Every page whose URL starts with
	// this root (with a trailing slash) belongs to the site.
	URL string `yaml:"url"`
}

// Scope returns the site's root URL normalized to end with a slash.
// This is the prefix used both for the scope predicate and as the stored Site url.
func (s Site) Scope() string {
	if strings.HasSuffix(s.URL, "/") {
		return s.URL
	}
	return s.URL + "/"
}

// Contains reports whether rawURL lies inside the site's scope.
// The bare root without a trailing slash is also accepted.
func (s Site) Contains(rawURL string) bool {
	scope := s.Scope()
	return strings.HasPrefix(rawURL, scope) || rawURL == strings.TrimSuffix(scope, "/")
}

// Validate checks that the site has a name and an absolute http(s) URL.
func (s Site) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrInvalidSiteName
	}
	u, err := url.Parse(s.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q", ErrInvalidSiteURL, s.URL)
	}
	return nil
}

// File represents the structure of the sitesearch YAML configuration file.
type File struct {
	// Sites is the ordered list of sites to index.
	Sites []Site `yaml:"sites"`

	// Language selects the morphology dictionary ("russian" or "english").
	Language string `yaml:"language,omitempty"`

	// Crawler holds fetch settings.
	Crawler CrawlerSection `yaml:"crawler,omitempty"`

	// Server holds HTTP API settings.
	Server ServerSection `yaml:"server,omitempty"`

	// Database holds storage settings.
	Database DatabaseSection `yaml:"database,omitempty"`
}

// CrawlerSection configures the fetcher identity and limits.
type CrawlerSection struct {
	UserAgent            string        `yaml:"userAgent,omitempty"`
	Referrer             string        `yaml:"referrer,omitempty"`
	Timeout              time.Duration `yaml:"timeout,omitempty"`
	MaxConcurrentFetches int           `yaml:"maxConcurrentFetches,omitempty"`
	MaxBodySize          int64         `yaml:"maxBodySize,omitempty"`
	RespectRobots        *bool         `yaml:"respectRobots,omitempty"`
}

// ServerSection configures the HTTP API.
type ServerSection struct {
	Listen         string   `yaml:"listen,omitempty"`
	RateLimit      *int     `yaml:"rateLimit,omitempty"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// DatabaseSection configures the SQLite location.
type DatabaseSection struct {
	Dir string `yaml:"dir,omitempty"`
}

// Apply merges non-zero file values into c.
func (f *File) Apply(c *Config) {
	if len(f.Sites) > 0 {
		c.Sites = append([]Site(nil), f.Sites...)
	}
	if f.Language != "" {
		c.Language = strings.ToLower(f.Language)
	}

	cr := f.Crawler
	if cr.UserAgent != "" {
		c.UserAgent = cr.UserAgent
	}
	if cr.Referrer != "" {
		c.Referrer = cr.Referrer
	}
	if cr.Timeout != 0 {
		c.Timeout = cr.Timeout
	}
	if cr.MaxConcurrentFetches != 0 {
		c.MaxConcurrentFetches = cr.MaxConcurrentFetches
	}
	if cr.MaxBodySize != 0 {
		c.MaxBodySize = cr.MaxBodySize
	}
	if cr.RespectRobots != nil {
		c.RespectRobots = *cr.RespectRobots
	}

	if f.Server.Listen != "" {
		c.ListenAddress = f.Server.Listen
	}
	if f.Server.RateLimit != nil {
		c.RateLimit = *f.Server.RateLimit
	}
	if len(f.Server.AllowedOrigins) > 0 {
		c.AllowedOrigins = append([]string(nil), f.Server.AllowedOrigins...)
	}
	if f.Database.Dir != "" {
		c.DBDir = f.Database.Dir
	}
}
