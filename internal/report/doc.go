// Package report renders search results and index statistics.
//
// Writers:
//   - SimpleWriter: human-readable text for terminal display
//   - JSONWriter: the JSON shape served by the HTTP API
//   - MarkdownWriter: tables and a mermaid chart via nao1215/markdown
//
// Writers implement the Writer interface and can be combined with MultiWriter.
package report
