package indexing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/sitesearch/internal/config"
	"github.com/nao1215/sitesearch/internal/crawler"
	"github.com/nao1215/sitesearch/internal/metrics"
	"github.com/nao1215/sitesearch/internal/model"
)

// Repository is the persistence the Service needs.
type Repository interface {
	DeleteSitesByURL(ctx context.Context, url string) (int64, error)
	CreateSite(ctx context.Context, name, url string, status model.SiteStatus) (*model.Site, error)
	GetSiteByURL(ctx context.Context, url string) (*model.Site, error)
	UpdateSiteStatus(ctx context.Context, id int64, status model.SiteStatus, lastError string) error
	TransitionSiteStatus(ctx context.Context, id int64, from, to model.SiteStatus, lastError string) (bool, error)
	TouchSite(ctx context.Context, id int64) error
	FailIndexingSites(ctx context.Context, message string) (int64, error)
	HasIndexingSites(ctx context.Context) (bool, error)
	PageExists(ctx context.Context, siteID int64, path string) (bool, error)
	InsertPage(ctx context.Context, page *model.Page) (bool, error)
	DeletePage(ctx context.Context, siteID int64, path string) (bool, error)
}

// PageFetcher downloads one page.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (*crawler.Response, error)
}

// PageIndexer folds a stored page into the index.
type PageIndexer interface {
	IndexPage(ctx context.Context, page *model.Page) error
}

// DefaultMaxFetches bounds in-flight fetches when no option is given.
const DefaultMaxFetches = 8

// Service starts, stops and runs crawls of the configured sites.
// At most one full crawl runs at a time.
type Service struct {
	sites      []config.Site
	store      Repository
	fetcher    PageFetcher
	indexer    PageIndexer
	logger     *slog.Logger
	metrics    *metrics.Metrics
	maxFetches int64

	mu  sync.Mutex
	run *Run
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithMaxFetches bounds the number of concurrent fetches of one run.
func WithMaxFetches(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxFetches = int64(n)
		}
	}
}

// NewService creates a Service over the configured sites.
func NewService(sites []config.Site, store Repository, fetcher PageFetcher, indexer PageIndexer, opts ...Option) *Service {
	s := &Service{
		sites:      append([]config.Site(nil), sites...),
		store:      store,
		fetcher:    fetcher,
		indexer:    indexer,
		logger:     slog.Default(),
		maxFetches: DefaultMaxFetches,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recover marks sites left INDEXING by a previous process as FAILED.
// Call it once at startup, before StartIndexing.
func (s *Service) Recover(ctx context.Context) error {
	n, err := s.store.FailIndexingSites(ctx, ErrInterrupted.Error())
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Warn("marked interrupted sites as failed", "sites", n)
	}
	return nil
}

// Running reports whether a full crawl is in progress.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run != nil
}

// Wait blocks until the current crawl, if any, has finished.
func (s *Service) Wait() {
	s.mu.Lock()
	run := s.run
	s.mu.Unlock()
	if run != nil {
		<-run.Done()
	}
}

// StartIndexing wipes and recreates every configured site as INDEXING and
// crawls them concurrently in the background. It is rejected while any
// site is INDEXING. The crawl outlives ctx's cancellation.
func (s *Service) StartIndexing(ctx context.Context) model.IndexingResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run != nil {
		return model.Failed(ErrAlreadyStarted)
	}
	busy, err := s.store.HasIndexingSites(ctx)
	if err != nil {
		return model.Failed(err)
	}
	if busy {
		return model.Failed(ErrAlreadyStarted)
	}

	bg := context.WithoutCancel(ctx)
	run := newRun(s.maxFetches)
	for _, cs := range s.sites {
		scope := cs.Scope()
		if _, err := s.store.DeleteSitesByURL(bg, scope); err != nil {
			s.abortStart(bg, run, err)
			return model.Failed(fmt.Errorf("failed to reset site %s: %w", cs.Name, err))
		}
		site, err := s.store.CreateSite(bg, cs.Name, scope, model.StatusIndexing)
		if err != nil {
			s.abortStart(bg, run, err)
			return model.Failed(fmt.Errorf("failed to create site %s: %w", cs.Name, err))
		}
		run.sites = append(run.sites, newSiteCrawl(site, scope))
	}

	s.run = run
	s.metrics.CrawlStarted(len(run.sites))
	s.logger.Info("indexing started", "sites", len(run.sites))

	go s.execute(bg, run)
	return model.Succeeded()
}

// abortStart fails the sites already created by an incomplete start.
func (s *Service) abortStart(ctx context.Context, run *Run, cause error) {
	for _, sc := range run.sites {
		if err := s.store.UpdateSiteStatus(ctx, sc.site.ID, model.StatusFailed, cause.Error()); err != nil {
			s.logger.Error("failed to mark site failed", "site", sc.site.Name, "error", err)
		}
	}
}

// StopIndexing raises the stop flag of the running crawl. It returns at
// once; sites turn FAILED as their tasks notice the flag.
func (s *Service) StopIndexing(ctx context.Context) model.IndexingResponse {
	s.mu.Lock()
	run := s.run
	s.mu.Unlock()

	if run == nil {
		return model.Failed(ErrNotStarted)
	}
	indexing, err := s.store.HasIndexingSites(ctx)
	if err != nil {
		return model.Failed(err)
	}
	if !indexing {
		return model.Failed(ErrNotStarted)
	}

	run.Stop()
	s.logger.Info("indexing stop requested")
	return model.Succeeded()
}

// execute crawls every site of run concurrently, waits for all of them and
// sets the terminal statuses.
func (s *Service) execute(ctx context.Context, run *Run) {
	defer close(run.done)

	var g errgroup.Group
	for _, sc := range run.sites {
		g.Go(func() error {
			s.logger.Info("crawling site", "site", sc.site.Name, "url", sc.scope)
			s.crawlPage(ctx, run, sc, sc.scope)
			return nil
		})
	}
	_ = g.Wait()

	outcome := "completed"
	if run.Stopped() {
		outcome = "stopped"
	}
	for _, sc := range run.sites {
		var err error
		if run.Stopped() {
			_, err = s.store.TransitionSiteStatus(ctx, sc.site.ID, model.StatusIndexing, model.StatusFailed, ErrStoppedByUser.Error())
		} else {
			_, err = s.store.TransitionSiteStatus(ctx, sc.site.ID, model.StatusIndexing, model.StatusIndexed, "")
		}
		if err != nil {
			s.logger.Error("failed to finish site", "site", sc.site.Name, "error", err)
		}
	}

	s.metrics.CrawlFinished(len(run.sites), outcome)
	s.logger.Info("indexing finished", "outcome", outcome)

	s.mu.Lock()
	s.run = nil
	s.mu.Unlock()
}

// crawlPage processes pageURL and then recursively crawls its in-scope
// links, returning only after every child task has returned.
func (s *Service) crawlPage(ctx context.Context, run *Run, sc *siteCrawl, pageURL string) {
	if s.abandon(ctx, run, sc) {
		return
	}
	path := crawler.RelativePath(sc.scope, pageURL)
	if !sc.reserve(path) {
		return
	}

	doc, err := s.processPage(ctx, run, sc, pageURL, path)
	if err != nil {
		s.handlePageError(ctx, sc, pageURL, err)
		return
	}

	var g errgroup.Group
	for _, link := range append(doc.Links, doc.Pagination...) {
		if !crawler.InScope(sc.scope, link) {
			continue
		}
		if s.abandon(ctx, run, sc) {
			break
		}
		if sc.reserved(crawler.RelativePath(sc.scope, link)) {
			continue
		}
		g.Go(func() error {
			s.crawlPage(ctx, run, sc, link)
			return nil
		})
	}
	_ = g.Wait()
}

// processPage fetches, stores and indexes one page and returns its parsed
// links. Skips are reported as errPageSkipped and transient fetch failures
// as *fetchError; any other error is unexpected.
func (s *Service) processPage(ctx context.Context, run *Run, sc *siteCrawl, pageURL, path string) (*crawler.Document, error) {
	exists, err := s.store.PageExists(ctx, sc.site.ID, path)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errPageSkipped
	}

	resp, err := s.fetch(ctx, run, pageURL)
	if err != nil {
		return nil, err
	}

	if s.abandon(ctx, run, sc) {
		return nil, errPageSkipped
	}

	page := &model.Page{
		SiteID:  sc.site.ID,
		Path:    path,
		Code:    resp.StatusCode,
		Content: resp.Body,
	}
	inserted, err := s.store.InsertPage(ctx, page)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, errPageSkipped
	}
	if err := s.store.TouchSite(ctx, sc.site.ID); err != nil {
		return nil, err
	}
	s.metrics.PageFetched(sc.site.Name)
	s.logger.Debug("page saved", "site", sc.site.Name, "path", path, "code", resp.StatusCode)

	if err := s.indexer.IndexPage(ctx, page); err != nil {
		s.logger.Error("failed to index page", "site", sc.site.Name, "path", path, "error", err)
	}

	doc, err := crawler.ParseDocument(pageURL, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}
	return doc, nil
}

// fetch downloads pageURL within the run's fetch budget.
func (s *Service) fetch(ctx context.Context, run *Run, pageURL string) (*crawler.Response, error) {
	if err := run.fetches.Acquire(ctx, 1); err != nil {
		return nil, errPageSkipped
	}
	defer run.fetches.Release(1)

	resp, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, &fetchError{err: err}
	}
	return resp, nil
}

func (s *Service) handlePageError(ctx context.Context, sc *siteCrawl, pageURL string, err error) {
	var fe *fetchError
	switch {
	case errors.Is(err, errPageSkipped):
	case errors.As(err, &fe):
		kind := crawler.ErrorKind(fe.err)
		s.metrics.FetchFailed(kind)
		s.logger.Warn("fetch failed", "site", sc.site.Name, "url", pageURL, "kind", kind, "error", fe.err)
	default:
		s.failSite(ctx, sc, err)
	}
}

// abandon reports whether the task should stop scheduling work. A raised
// stop flag marks the site FAILED the first time a task sees it.
func (s *Service) abandon(ctx context.Context, run *Run, sc *siteCrawl) bool {
	if run.Stopped() {
		sc.stopOnce.Do(func() {
			if _, err := s.store.TransitionSiteStatus(ctx, sc.site.ID, model.StatusIndexing, model.StatusFailed,
				ErrStoppedByUser.Error()); err != nil {
				s.logger.Error("failed to mark site stopped", "site", sc.site.Name, "error", err)
			}
		})
		return true
	}
	return sc.failed.Load() || ctx.Err() != nil
}

// failSite marks the site FAILED with err's message; its remaining tasks wind down.
func (s *Service) failSite(ctx context.Context, sc *siteCrawl, err error) {
	sc.failed.Store(true)
	sc.failOnce.Do(func() {
		s.logger.Error("site indexing failed", "site", sc.site.Name, "error", err)
		if _, uerr := s.store.TransitionSiteStatus(ctx, sc.site.ID, model.StatusIndexing, model.StatusFailed, err.Error()); uerr != nil {
			s.logger.Error("failed to mark site failed", "site", sc.site.Name, "error", uerr)
		}
	})
}

// IndexPage re-indexes a single page of a configured site: the stored copy
// and its index contributions are removed, then the page is fetched,
// stored and indexed again. Links are not followed. The site keeps the
// status it had before the call; a site created here ends INDEXED.
func (s *Service) IndexPage(ctx context.Context, rawURL string) model.IndexingResponse {
	pageURL, err := canonicalURL(rawURL)
	if err != nil {
		return model.Failed(err)
	}

	cs, ok := s.findSite(pageURL)
	if !ok {
		return model.Failed(ErrOutsideSites)
	}
	scope := cs.Scope()

	site, err := s.store.GetSiteByURL(ctx, scope)
	if err != nil {
		return model.Failed(err)
	}
	var prior *singlePageStatus
	switch {
	case site == nil:
		site, err = s.store.CreateSite(ctx, cs.Name, scope, model.StatusIndexing)
		if err != nil {
			return model.Failed(err)
		}
		prior = &singlePageStatus{status: model.StatusIndexed, created: true}
	case site.Status != model.StatusIndexing:
		prior = &singlePageStatus{status: site.Status, lastError: site.LastError}
		if err := s.store.UpdateSiteStatus(ctx, site.ID, model.StatusIndexing, ""); err != nil {
			return model.Failed(err)
		}
	}

	path := crawler.RelativePath(scope, pageURL)
	if _, err := s.store.DeletePage(ctx, site.ID, path); err != nil {
		s.finishSinglePage(ctx, site, prior)
		return model.Failed(err)
	}

	run := newRun(1)
	sc := newSiteCrawl(site, scope)
	sc.reserve(path)

	_, err = s.processPage(ctx, run, sc, pageURL, path)
	var fe *fetchError
	switch {
	case err == nil, errors.Is(err, errPageSkipped):
	case errors.As(err, &fe):
		s.metrics.FetchFailed(crawler.ErrorKind(fe.err))
		s.logger.Warn("fetch failed", "site", site.Name, "url", pageURL, "error", fe.err)
		s.finishSinglePage(ctx, site, prior)
		return model.Failed(fe.err)
	case prior != nil && prior.created:
		s.failSite(ctx, sc, err)
		return model.Failed(err)
	default:
		s.logger.Error("failed to index page", "site", site.Name, "url", pageURL, "error", err)
		s.finishSinglePage(ctx, site, prior)
		return model.Failed(err)
	}

	s.finishSinglePage(ctx, site, prior)
	return model.Succeeded()
}

// singlePageStatus is the site status IndexPage restores when it is done.
// A nil value means a crawl owns the status.
type singlePageStatus struct {
	status    model.SiteStatus
	lastError string
	created   bool
}

func (s *Service) finishSinglePage(ctx context.Context, site *model.Site, prior *singlePageStatus) {
	if prior == nil {
		return
	}
	if _, err := s.store.TransitionSiteStatus(ctx, site.ID, model.StatusIndexing, prior.status, prior.lastError); err != nil {
		s.logger.Error("failed to finish site", "site", site.Name, "error", err)
	}
}

// canonicalURL brings rawURL into the escaped form links take when the
// crawler resolves them, so both map to the same stored path.
func canonicalURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("failed to parse page url: %w", err)
	}
	return u.String(), nil
}

func (s *Service) findSite(pageURL string) (config.Site, bool) {
	for _, cs := range s.sites {
		if cs.Contains(pageURL) {
			return cs, true
		}
	}
	return config.Site{}, false
}
