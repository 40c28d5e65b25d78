package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// Default fetcher settings, mirrored by the config package defaults.
const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxBodySize = 5 * 1024 * 1024
	DefaultUserAgent   = "SiteSearchBot/1.0"
)

// Response is a successfully fetched HTML page.
type Response struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status code (always 2xx).
	StatusCode int

	// ContentType is the response Content-Type header.
	ContentType string

	// Body is the response body decoded to UTF-8.
	Body string
}

// Fetcher downloads pages with a fixed identity and a per-request timeout.
// It is safe for concurrent use.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	referrer    string
	maxBodySize int64
	robots      *robotsPolicy
	logger      *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient sets the HTTP client. Its Timeout is the per-request bound.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithTimeout sets the per-request timeout on the fetcher's client.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithReferrer sets the Referer header.
func WithReferrer(ref string) FetcherOption {
	return func(f *Fetcher) {
		f.referrer = ref
	}
}

// WithMaxBodySize limits how many bytes of a body are read.
func WithMaxBodySize(n int64) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithRobots makes the fetcher honor robots.txt.
func WithRobots(enabled bool) FetcherOption {
	return func(f *Fetcher) {
		if enabled {
			f.robots = newRobotsPolicy()
		} else {
			f.robots = nil
		}
	}
}

// WithFetcherLogger sets the logger.
func WithFetcherLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// NewFetcher creates a Fetcher. Options are applied in order, so
// WithHTTPClient should precede WithTimeout.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: DefaultTimeout},
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads pageURL. Every failure wraps one of the package's
// sentinel errors; see ErrorKind.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Response, error) {
	if f.robots != nil && !f.robots.allowed(ctx, f, pageURL) {
		return nil, fmt.Errorf("%w: %s", ErrDisallowedByRobots, pageURL)
	}

	resp, err := f.get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", classifyTransportError(err), pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, pageURL, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTML(contentType) {
		return nil, fmt.Errorf("%w: %s is %q", ErrNotHTML, pageURL, contentType)
	}

	reader, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBodySize), contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: failed to detect charset: %w", ErrRequestFailed, pageURL, err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: failed to read body: %w", classifyTransportError(err), pageURL, err)
	}

	f.logger.Debug("fetched page", "url", pageURL, "status", resp.StatusCode, "bytes", len(body))

	return &Response{
		URL:         pageURL,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        string(body),
	}, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	if f.referrer != "" {
		req.Header.Set("Referer", f.referrer)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	return f.client.Do(req)
}

// isHTML accepts HTML and XHTML documents. A missing Content-Type is
// accepted and left to the parser.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), "html")
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
