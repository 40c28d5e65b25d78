package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sitesearch.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitesearch",
		Short: "Site crawler and lemma-based search engine",
		Long: `sitesearch crawls the web sites listed in its configuration file,
extracts normalized word forms (lemmas) from every page and stores an
inverted index in SQLite. Queries are answered from that index, ranked by
relevance and returned with highlighted snippets.

The configuration file is looked up at --config, ./sitesearch.yaml and
$XDG_CONFIG_HOME/sitesearch/config.yaml. Run "sitesearch init" to create one.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: ./sitesearch.yaml or the XDG config directory)")
	cmd.PersistentFlags().String("db-dir", "",
		"Directory holding the SQLite database (default: XDG data directory)")
	cmd.PersistentFlags().String("env-file", ".env", "dotenv file with SITESEARCH_* overrides")

	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewIndexPageCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
