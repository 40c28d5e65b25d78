package log

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"
)

// MaskValue replaces credential values in log output.
const MaskValue = "***REDACTED***"

// DefaultMaxValueLen is the longest string attribute written verbatim.
// Page bodies and snippets routinely exceed it and are truncated.
const DefaultMaxValueLen = 256

// credentialKeys are attribute keys whose values are never logged.
var credentialKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"password":            true,
	"token":               true,
	"api_key":             true,
	"secret":              true,
}

// credentialParams are query parameters masked inside logged URLs.
var credentialParams = []string{"token", "access_token", "api_key", "apikey", "key", "password", "session", "sid"}

// RedactHandler wraps an slog.Handler and scrubs attributes before they reach it:
// credential keys are masked, URL userinfo and credential query parameters are
// hidden, and long strings are truncated.
type RedactHandler struct {
	handler     slog.Handler
	maxValueLen int
}

// NewRedactHandler wraps handler. If handler is nil, slog.Default().Handler() is used.
// A maxValueLen of zero selects DefaultMaxValueLen.
func NewRedactHandler(handler slog.Handler, maxValueLen int) *RedactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	if maxValueLen <= 0 {
		maxValueLen = DefaultMaxValueLen
	}
	return &RedactHandler{handler: handler, maxValueLen: maxValueLen}
}

// Enabled delegates to the wrapped handler.
func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle scrubs the record's attributes and forwards it.
func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	scrubbed := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		scrubbed.AddAttrs(h.scrub(a))
		return true
	})
	return h.handler.Handle(ctx, scrubbed)
}

// WithAttrs returns a handler whose preset attributes are scrubbed.
func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	scrubbed := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		scrubbed[i] = h.scrub(a)
	}
	return &RedactHandler{handler: h.handler.WithAttrs(scrubbed), maxValueLen: h.maxValueLen}
}

// WithGroup returns a handler that nests attributes under name.
func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{handler: h.handler.WithGroup(name), maxValueLen: h.maxValueLen}
}

func (h *RedactHandler) scrub(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		scrubbed := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			scrubbed[i] = h.scrub(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(scrubbed...)}
	}

	if credentialKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}
	s := a.Value.String()
	if looksLikeURL(s) {
		s = RedactURL(s)
	}
	return slog.String(a.Key, truncate(s, h.maxValueLen))
}

func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// RedactURL hides the password part of URL userinfo and the values of
// credential query parameters. Unparseable input is returned unchanged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	changed := false
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
			changed = true
		}
	}
	if u.RawQuery != "" {
		q := u.Query()
		for _, p := range credentialParams {
			if q.Has(p) {
				q.Set(p, "xxxxx")
				changed = true
			}
		}
		if changed {
			u.RawQuery = q.Encode()
		}
	}
	if !changed {
		return raw
	}
	return u.String()
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "...(truncated)"
}

// NewLogger creates a *slog.Logger writing to w.
// verbose selects Debug instead of Warn; format is "json" or anything else for text.
func NewLogger(w io.Writer, verbose bool, format string) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var base slog.Handler
	if format == "json" {
		base = slog.NewJSONHandler(w, opts)
	} else {
		base = slog.NewTextHandler(w, opts)
	}
	return slog.New(NewRedactHandler(base, DefaultMaxValueLen))
}

// Discard returns a logger that drops everything. Handy for tests and library defaults.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
