package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// NewIndexPageCmd creates the index-page command.
func NewIndexPageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index-page <url>",
		Short: "Re-index a single page of a configured site",
		Long: `Index-page fetches one page, replaces its stored copy and updates the
index. Links on the page are not followed. The URL must belong to one of
the configured sites. Escaped and unescaped forms of a path name the
same page.

Examples:
  sitesearch index-page https://example.com/news/42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			resp := a.indexing.IndexPage(cmd.Context(), args[0])
			if !resp.Result {
				return errors.New(resp.Error)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %s\n", args[0])
			return nil
		},
	}
}
