package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/sitesearch/internal/model"
)

// SimpleWriter outputs human-readable text for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose adds snippets to search output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables snippets in search output.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output), verbose: true}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteSearch outputs search results, best match first.
func (w *SimpleWriter) WriteSearch(resp *model.SearchResponse) (int, error) {
	var sb strings.Builder
	writeBanner(&sb, "SEARCH RESULTS")

	if !resp.Result {
		fmt.Fprintf(&sb, "Error: %s\n", resp.Error)
		return w.output.Write([]byte(sb.String()))
	}

	fmt.Fprintf(&sb, "Matches: %d (showing %d)\n\n", resp.Count, len(resp.Data))
	for i, r := range resp.Data {
		fmt.Fprintf(&sb, "%2d. %s\n", i+1, displayTitle(r))
		fmt.Fprintf(&sb, "    %s%s  [%s]  relevance %.3f\n", r.Site, r.URI, r.SiteName, r.Relevance)
		if w.verbose && r.Snippet != "" {
			fmt.Fprintf(&sb, "    %s\n", plainSnippet(r.Snippet))
		}
		sb.WriteString("\n")
	}
	return w.output.Write([]byte(sb.String()))
}

// WriteStatistics outputs totals followed by one block per site.
func (w *SimpleWriter) WriteStatistics(resp *model.StatisticsResponse) (int, error) {
	var sb strings.Builder
	writeBanner(&sb, "INDEX STATISTICS")

	if !resp.Result {
		fmt.Fprintf(&sb, "Error: %s\n", resp.Error)
		return w.output.Write([]byte(sb.String()))
	}

	total := resp.Statistics.Total
	fmt.Fprintf(&sb, "Sites:    %d\n", total.Sites)
	fmt.Fprintf(&sb, "Pages:    %d\n", total.Pages)
	fmt.Fprintf(&sb, "Lemmas:   %d\n", total.Lemmas)
	fmt.Fprintf(&sb, "Indexing: %t\n\n", total.Indexing)

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	for _, d := range resp.Statistics.Detailed {
		fmt.Fprintf(&sb, "%s (%s)\n", d.Name, d.URL)
		fmt.Fprintf(&sb, "  Status:  %s\n", displayStatus(d.Status))
		if d.StatusTime > 0 {
			fmt.Fprintf(&sb, "  Updated: %s\n", formatMillis(d.StatusTime))
		}
		fmt.Fprintf(&sb, "  Pages:   %d\n", d.Pages)
		fmt.Fprintf(&sb, "  Lemmas:  %d\n", d.Lemmas)
		if d.Error != "" {
			fmt.Fprintf(&sb, "  Error:   %s\n", d.Error)
		}
		sb.WriteString("\n")
	}
	return w.output.Write([]byte(sb.String()))
}

func writeBanner(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

func displayTitle(r model.SearchResult) string {
	if r.Title == "" {
		return "(untitled)"
	}
	return r.Title
}

func displayStatus(status string) string {
	if status == "" {
		return "NOT INDEXED"
	}
	return status
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04:05 MST")
}

// plainSnippet replaces emphasis tags with asterisks for terminal output.
func plainSnippet(s string) string {
	return strings.NewReplacer("<b>", "*", "</b>", "*").Replace(s)
}
