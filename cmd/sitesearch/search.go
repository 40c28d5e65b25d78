package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitesearch/internal/report"
	"github.com/nao1215/sitesearch/internal/search"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Search the index",
		Long: `Search finds pages containing every indexed lemma of the query and ranks
them by summed rank score. The best page has relevance 1.0; weaker pages
score higher.

Examples:
  sitesearch search "cats and dogs"
  sitesearch search --site https://example.com --limit 5 cats
  sitesearch search --format json cats`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearchCmd,
	}

	cmd.Flags().StringP("site", "s", "", "Restrict results to one configured site URL")
	cmd.Flags().IntP("limit", "l", search.DefaultLimit, "Maximum number of results")
	cmd.Flags().Int("offset", 0, "Number of ranked results to skip")
	cmd.Flags().StringP("format", "F", report.FormatText, "Output format: text, json or markdown")
	return cmd
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	q := search.Query{Text: strings.Join(args, " ")}
	var err error
	if q.Site, err = cmd.Flags().GetString("site"); err != nil {
		return err
	}
	if q.Limit, err = cmd.Flags().GetInt("limit"); err != nil {
		return err
	}
	if q.Offset, err = cmd.Flags().GetInt("offset"); err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	writer, err := report.New(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	resp := a.search.Search(cmd.Context(), q)
	if !resp.Result {
		return errors.New(resp.Error)
	}
	_, err = writer.WriteSearch(&resp)
	return err
}
