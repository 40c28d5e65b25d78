package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitesearch/internal/report"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics",
		Long: `Stats prints the number of sites, pages and lemmas in the index and the
crawl status of every configured site.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			resp := a.stats.Statistics(cmd.Context())
			if !resp.Result {
				return errors.New(resp.Error)
			}
			_, err = writer.WriteStatistics(&resp)
			return err
		},
	}
	cmd.Flags().StringP("format", "F", report.FormatText, "Output format: text, json or markdown")
	return cmd
}
