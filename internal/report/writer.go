package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/sitesearch/internal/model"
)

// Supported output formats.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// ErrUnknownFormat is returned by New for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown output format")

// Writer renders search results and statistics.
type Writer interface {
	// WriteSearch outputs a search response.
	// Returns the number of bytes written and any error encountered.
	WriteSearch(resp *model.SearchResponse) (int, error)

	// WriteStatistics outputs a statistics response.
	WriteStatistics(resp *model.StatisticsResponse) (int, error)
}

// New returns the Writer for format ("text", "json" or "markdown").
func New(format string, output io.Writer) (Writer, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return NewSimpleWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// MultiWriter writes to multiple Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteSearch outputs the search response to all Writers.
// Stops on first error encountered.
func (m *MultiWriter) WriteSearch(resp *model.SearchResponse) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSearch(resp)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteStatistics outputs the statistics response to all Writers.
func (m *MultiWriter) WriteStatistics(resp *model.StatisticsResponse) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteStatistics(resp)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
