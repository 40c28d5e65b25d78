package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitesearch/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl and index every configured site",
		Long: `Crawl wipes the stored index of every configured site and rebuilds it
by crawling each site from its root URL. Sites are crawled concurrently.

Press Ctrl+C to stop: sites still being crawled are marked FAILED with
"indexing has been stopped by user" and pages indexed so far are kept.

Examples:
  sitesearch crawl
  sitesearch crawl -c sitesearch.yaml --format markdown`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}
	cmd.Flags().StringP("format", "F", report.FormatText, "Statistics output format: text, json or markdown")
	return cmd
}

func runCrawlCmd(cmd *cobra.Command, _ []string) error {
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

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.recoverInterrupted(ctx); err != nil {
		return err
	}

	resp := a.indexing.StartIndexing(ctx)
	if !resp.Result {
		return errors.New(resp.Error)
	}
	a.logger.Info("crawl started", "sites", len(a.cfg.Sites))

	done := make(chan struct{})
	go func() {
		a.indexing.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		a.logger.Warn("received shutdown signal, stopping crawl...")
		a.indexing.StopIndexing(context.WithoutCancel(ctx))
		<-done
	}

	stats := a.stats.Statistics(context.WithoutCancel(ctx))
	_, err = writer.WriteStatistics(&stats)
	return err
}
