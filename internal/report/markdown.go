package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/sitesearch/internal/model"
)

// MarkdownWriter outputs responses as GitHub-flavored markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// WriteSearch outputs the search results as a table.
func (w *MarkdownWriter) WriteSearch(resp *model.SearchResponse) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Search Results")
	md.PlainText("")

	if !resp.Result {
		md.Warningf("%s", resp.Error)
		return len(md.String()), md.Build()
	}

	md.PlainTextf("%d matching page(s), showing %d.", resp.Count, len(resp.Data))
	md.PlainText("")

	rows := make([][]string, len(resp.Data))
	for i, r := range resp.Data {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			"["+truncateString(displayTitle(r), 60)+"]("+r.Site+r.URI+")",
			r.SiteName,
			strconv.FormatFloat(r.Relevance, 'f', 3, 64),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Page", "Site", "Relevance"},
		Rows:   rows,
	})
	md.PlainText("")

	for i, r := range resp.Data {
		if r.Snippet != "" {
			md.Details(fmt.Sprintf("%d. %s", i+1, displayTitle(r)), r.Snippet)
		}
	}
	return len(md.String()), md.Build()
}

// WriteStatistics outputs totals, a per-site table and a page distribution chart.
func (w *MarkdownWriter) WriteStatistics(resp *model.StatisticsResponse) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Index Statistics")
	md.PlainText("")

	if !resp.Result {
		md.Warningf("%s", resp.Error)
		return len(md.String()), md.Build()
	}

	total := resp.Statistics.Total
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Sites", strconv.Itoa(total.Sites)},
			{"Pages", strconv.FormatInt(total.Pages, 10)},
			{"Lemmas", strconv.FormatInt(total.Lemmas, 10)},
			{"Indexing", strconv.FormatBool(total.Indexing)},
		},
	})
	md.PlainText("")

	if total.Indexing {
		md.Note("Indexing is in progress; search is unavailable until it finishes.")
		md.PlainText("")
	}

	md.H2("Sites")
	md.PlainText("")
	rows := make([][]string, len(resp.Statistics.Detailed))
	for i, d := range resp.Statistics.Detailed {
		updated := "-"
		if d.StatusTime > 0 {
			updated = formatMillis(d.StatusTime)
		}
		errText := d.Error
		if errText == "" {
			errText = "-"
		}
		rows[i] = []string{
			d.Name,
			"`" + d.URL + "`",
			displayStatus(d.Status),
			updated,
			strconv.FormatInt(d.Pages, 10),
			strconv.FormatInt(d.Lemmas, 10),
			truncateString(errText, 60),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Name", "URL", "Status", "Updated", "Pages", "Lemmas", "Error"},
		Rows:   rows,
	})
	md.PlainText("")

	if total.Pages > 0 {
		w.writePieChart(md, resp.Statistics.Detailed)
	}
	return len(md.String()), md.Build()
}

// writePieChart writes a mermaid pie chart of pages per site.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, items []model.DetailedStatisticsItem) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Pages per Site"),
		piechart.WithShowData(true),
	)
	for _, d := range items {
		if d.Pages > 0 {
			chart.LabelAndIntValue(d.Name, uint64(d.Pages))
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
