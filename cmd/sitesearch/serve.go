package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitesearch/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve exposes crawl control, search and statistics over HTTP:

  GET  /api/statistics
  GET  /api/startIndexing
  GET  /api/stopIndexing
  POST /api/indexPage      (form field "url")
  GET  /api/search?query=&site=&offset=&limit=
  GET  /metrics            (Prometheus)
  GET  /healthz

The server shuts down gracefully on SIGINT or SIGTERM and stops a running crawl.`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}
	cmd.Flags().StringP("listen", "l", "", "Listen address (overrides server.listen)")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	listen, err := cmd.Flags().GetString("listen")
	if err != nil {
		return err
	}
	if listen == "" {
		listen = a.cfg.ListenAddress
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.recoverInterrupted(ctx); err != nil {
		return err
	}

	srv := server.New(a.indexing, a.search, a.stats,
		server.WithLogger(a.logger),
		server.WithMetrics(a.metrics),
		server.WithRateLimit(a.cfg.RateLimit),
		server.WithAllowedOrigins(a.cfg.AllowedOrigins),
	)
	err = srv.ListenAndServe(ctx, listen)

	if a.indexing.Running() {
		a.logger.Info("stopping running crawl")
		a.indexing.StopIndexing(context.WithoutCancel(ctx))
		a.indexing.Wait()
	}
	return err
}
