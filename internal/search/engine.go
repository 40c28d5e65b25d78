package search

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/nao1215/sitesearch/internal/crawler"
	"github.com/nao1215/sitesearch/internal/lemma"
	"github.com/nao1215/sitesearch/internal/metrics"
	"github.com/nao1215/sitesearch/internal/model"
)

// DefaultLimit is the page size used when a query does not set one.
const DefaultLimit = 20

// Repository is the read-only index access the Engine needs.
type Repository interface {
	HasIndexingSites(ctx context.Context) (bool, error)
	ListSites(ctx context.Context) ([]model.Site, error)
	GetSiteByURL(ctx context.Context, url string) (*model.Site, error)
	FindLemmas(ctx context.Context, siteID int64, words []string) ([]model.Lemma, error)
	PageIDsForLemma(ctx context.Context, lemmaID int64) ([]int64, error)
	PageRelevance(ctx context.Context, pageID int64, lemmaIDs []int64) (float64, error)
	GetPage(ctx context.Context, id int64) (*model.Page, error)
}

// Query is one search request.
type Query struct {
	// Text is the free-text query.
	Text string

	// Site restricts the search to one site root URL. Empty means all sites.
	Site string

	// Offset is the number of ranked results to skip.
	Offset int

	// Limit is the maximum number of results. Zero or less means DefaultLimit.
	Limit int
}

// Engine answers queries against the stored index.
type Engine struct {
	store     Repository
	extractor *lemma.Extractor
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine creates an Engine.
func NewEngine(store Repository, extractor *lemma.Extractor, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		extractor: extractor,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// hit is a matching page with its absolute relevance.
type hit struct {
	site      model.Site
	pageID    int64
	relevance float64
	score     float64
}

// Search runs q. Failures are reported in the response, never as an error.
func (e *Engine) Search(ctx context.Context, q Query) model.SearchResponse {
	start := time.Now()
	resp := e.search(ctx, q)
	e.metrics.SearchServed(resp.Result, time.Since(start))
	if resp.Result {
		e.logger.Debug("search served", "query", q.Text, "site", q.Site, "count", resp.Count,
			"elapsed", time.Since(start))
	} else {
		e.logger.Debug("search failed", "query", q.Text, "site", q.Site, "error", resp.Error)
	}
	return resp
}

func (e *Engine) search(ctx context.Context, q Query) model.SearchResponse {
	if strings.TrimSpace(q.Text) == "" {
		return model.SearchFailed(ErrEmptyQuery)
	}
	busy, err := e.store.HasIndexingSites(ctx)
	if err != nil {
		return model.SearchFailed(err)
	}
	if busy {
		return model.SearchFailed(ErrIndexingInProgress)
	}

	set := e.extractor.LemmaSet(q.Text)
	if len(set) == 0 {
		return model.SearchFailed(ErrNoMatches)
	}
	words := make([]string, 0, len(set))
	for l := range set {
		words = append(words, l)
	}
	slices.Sort(words)

	sites, err := e.sites(ctx, q.Site)
	if err != nil {
		return model.SearchFailed(err)
	}

	var hits []hit
	for _, site := range sites {
		siteHits, err := e.matchSite(ctx, site, words)
		if err != nil {
			return model.SearchFailed(err)
		}
		hits = append(hits, siteHits...)
	}
	if len(hits) == 0 {
		return model.SearchFailed(ErrNoMatches)
	}

	rank(hits)

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	offset := max(q.Offset, 0)
	window := hits[min(offset, len(hits)):min(offset+limit, len(hits))]

	terms := newTerms(e.extractor, q.Text)
	data := make([]model.SearchResult, 0, len(window))
	for _, h := range window {
		page, err := e.store.GetPage(ctx, h.pageID)
		if err != nil {
			return model.SearchFailed(err)
		}
		data = append(data, model.SearchResult{
			Site:      strings.TrimSuffix(h.site.URL, "/"),
			SiteName:  h.site.Name,
			URI:       page.Path,
			Title:     crawler.Title(page.Content),
			Snippet:   Snippet(page.Content, terms),
			Relevance: h.score,
		})
	}

	return model.SearchResponse{Result: true, Count: len(hits), Data: data}
}

// sites resolves the search scope. An unknown scope yields no sites.
func (e *Engine) sites(ctx context.Context, scope string) ([]model.Site, error) {
	if scope == "" {
		return e.store.ListSites(ctx)
	}
	if !strings.HasSuffix(scope, "/") {
		scope += "/"
	}
	site, err := e.store.GetSiteByURL(ctx, scope)
	if err != nil || site == nil {
		return nil, err
	}
	return []model.Site{*site}, nil
}

// matchSite intersects the page sets of the query lemmas indexed for site,
// rarest lemma first, and scores the surviving pages.
func (e *Engine) matchSite(ctx context.Context, site model.Site, words []string) ([]hit, error) {
	lemmas, err := e.store.FindLemmas(ctx, site.ID, words)
	if err != nil || len(lemmas) == 0 {
		return nil, err
	}

	var pages []int64
	lemmaIDs := make([]int64, 0, len(lemmas))
	for i, l := range lemmas {
		lemmaIDs = append(lemmaIDs, l.ID)
		ids, err := e.store.PageIDsForLemma(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			pages = ids
		} else {
			pages = intersect(pages, ids)
		}
		if len(pages) == 0 {
			return nil, nil
		}
	}

	hits := make([]hit, 0, len(pages))
	for _, id := range pages {
		rel, err := e.store.PageRelevance(ctx, id, lemmaIDs)
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit{site: site, pageID: id, relevance: rel})
	}
	return hits, nil
}

// rank sets each hit's score to max relevance divided by its own relevance
// and orders hits by ascending score, so the most relevant page comes first
// with a score of 1.0.
func rank(hits []hit) {
	var best float64
	for _, h := range hits {
		best = max(best, h.relevance)
	}
	for i := range hits {
		if hits[i].relevance > 0 {
			hits[i].score = best / hits[i].relevance
		}
	}
	slices.SortStableFunc(hits, func(a, b hit) int {
		return cmp.Or(
			cmp.Compare(a.score, b.score),
			cmp.Compare(a.site.ID, b.site.ID),
			cmp.Compare(a.pageID, b.pageID),
		)
	})
}

// intersect returns the ids present in both sorted slices.
func intersect(a, b []int64) []int64 {
	out := make([]int64, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}
