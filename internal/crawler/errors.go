package crawler

import (
	"context"
	"errors"
	"net"
)

// Fetch errors. Every error returned by Fetcher.Fetch wraps one of these,
// and all of them are transient: the page is skipped, the crawl goes on.
var (
	// ErrFetchTimeout is returned when the request exceeded the per-request timeout.
	ErrFetchTimeout = errors.New("fetch timed out")

	// ErrHostUnreachable is returned when the host cannot be resolved or connected to.
	ErrHostUnreachable = errors.New("host unreachable")

	// ErrUnexpectedStatus is returned for responses outside the 2xx range.
	ErrUnexpectedStatus = errors.New("unexpected status code")

	// ErrNotHTML is returned when the response is not an HTML document.
	ErrNotHTML = errors.New("not an HTML document")

	// ErrDisallowedByRobots is returned when robots.txt forbids the path.
	ErrDisallowedByRobots = errors.New("disallowed by robots.txt")

	// ErrRequestFailed is returned for any other transport failure.
	ErrRequestFailed = errors.New("request failed")
)

// ErrorKind returns a short label for a fetch error, suitable for log
// attributes and metric labels.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrFetchTimeout):
		return "timeout"
	case errors.Is(err, ErrHostUnreachable):
		return "unreachable"
	case errors.Is(err, ErrUnexpectedStatus):
		return "status"
	case errors.Is(err, ErrNotHTML):
		return "content_type"
	case errors.Is(err, ErrDisallowedByRobots):
		return "robots"
	default:
		return "other"
	}
}

// classifyTransportError maps an http.Client error onto a sentinel.
func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return ErrFetchTimeout
	}
	var dnsErr *net.DNSError
	var opErr *net.OpError
	if errors.As(err, &dnsErr) || errors.As(err, &opErr) {
		return ErrHostUnreachable
	}
	return ErrRequestFailed
}
