package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitesearch/internal/config"
	"github.com/nao1215/sitesearch/internal/crawler"
	"github.com/nao1215/sitesearch/internal/database"
	"github.com/nao1215/sitesearch/internal/indexer"
	"github.com/nao1215/sitesearch/internal/indexing"
	"github.com/nao1215/sitesearch/internal/lemma"
	"github.com/nao1215/sitesearch/internal/log"
	"github.com/nao1215/sitesearch/internal/metrics"
	"github.com/nao1215/sitesearch/internal/search"
	"github.com/nao1215/sitesearch/internal/statistics"
)

// app wires the services shared by every command.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *database.Store
	metrics  *metrics.Metrics
	indexing *indexing.Service
	search   *search.Engine
	stats    *statistics.Service
}

// loadConfig builds the configuration from the config file, the dotenv
// file, SITESEARCH_* variables and command flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return nil, err
	}
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	path := config.FindConfigFile(cfg.ConfigFilePath)
	if path == "" {
		if cfg.ConfigFilePath != "" {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
		}
		return nil, fmt.Errorf("%w (run \"sitesearch init\" to create one)", config.ErrConfigNotFound)
	}
	file, err := config.LoadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	file.Apply(cfg)
	cfg.ConfigFilePath = path

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if cfg.Verbose, err = cmd.Flags().GetBool("verbose"); err != nil {
		return nil, err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// newApp loads the configuration and opens the database.
// The caller must call close.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := log.NewLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.LogFormat)
	slog.SetDefault(logger)

	store, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Debug("database opened", "path", store.Path())

	extractor, err := lemma.NewForLanguage(cfg.Language)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	m := metrics.New()
	fetcher := crawler.NewFetcher(
		crawler.WithTimeout(cfg.Timeout),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithReferrer(cfg.Referrer),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithRobots(cfg.RespectRobots),
		crawler.WithFetcherLogger(logger),
	)
	builder := indexer.NewBuilder(store, extractor,
		indexer.WithLogger(logger),
		indexer.WithMetrics(m),
	)

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		metrics: m,
		indexing: indexing.NewService(cfg.Sites, store, fetcher, builder,
			indexing.WithLogger(logger),
			indexing.WithMetrics(m),
			indexing.WithMaxFetches(cfg.MaxConcurrentFetches),
		),
		search: search.NewEngine(store, extractor,
			search.WithLogger(logger),
			search.WithMetrics(m),
		),
		stats: statistics.NewService(cfg.Sites, store),
	}, nil
}

// recoverInterrupted marks sites left INDEXING by a crashed process as FAILED.
// Only commands that own crawling (crawl, serve) call it.
func (a *app) recoverInterrupted(ctx context.Context) error {
	if err := a.indexing.Recover(ctx); err != nil {
		return fmt.Errorf("failed to recover interrupted sites: %w", err)
	}
	return nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close database", "error", err)
	}
}
