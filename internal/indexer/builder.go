package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/nao1215/sitesearch/internal/lemma"
	"github.com/nao1215/sitesearch/internal/metrics"
	"github.com/nao1215/sitesearch/internal/model"
)

// Chunking defaults for large pages.
const (
	// DefaultChunkThreshold is the content length, in characters, above
	// which a page is processed in chunks.
	DefaultChunkThreshold = 10000

	// DefaultChunkSize is the length of one chunk in characters.
	DefaultChunkSize = 2000

	// DefaultFlushEvery is the number of chunks accumulated between writes.
	DefaultFlushEvery = 10
)

// Store is the persistence the Builder writes to.
type Store interface {
	// AddLemmaCounts adds counts to the site's lemma frequencies and to the
	// page's Index ranks, creating missing rows.
	AddLemmaCounts(ctx context.Context, siteID, pageID int64, counts map[string]int) error
}

// Builder turns a stored page into Lemma and Index rows.
// It is safe for concurrent use; writes for one site are serialized.
type Builder struct {
	store     Store
	extractor *lemma.Extractor
	logger    *slog.Logger
	metrics   *metrics.Metrics

	chunkThreshold int
	chunkSize      int
	flushEvery     int

	mu        sync.Mutex
	siteLocks map[int64]*sync.Mutex
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Builder) {
		b.metrics = m
	}
}

// WithChunking overrides the chunk threshold, chunk size and flush interval.
func WithChunking(threshold, size, flushEvery int) Option {
	return func(b *Builder) {
		if threshold > 0 {
			b.chunkThreshold = threshold
		}
		if size > 0 {
			b.chunkSize = size
		}
		if flushEvery > 0 {
			b.flushEvery = flushEvery
		}
	}
}

// NewBuilder creates a Builder writing to store.
func NewBuilder(store Store, extractor *lemma.Extractor, opts ...Option) *Builder {
	b := &Builder{
		store:          store,
		extractor:      extractor,
		logger:         slog.Default(),
		chunkThreshold: DefaultChunkThreshold,
		chunkSize:      DefaultChunkSize,
		flushEvery:     DefaultFlushEvery,
		siteLocks:      make(map[int64]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// IndexPage extracts the page's lemmas and folds them into the index.
// Pages longer than the chunk threshold are processed chunk by chunk,
// with counts flushed every few chunks; the result equals processing the
// whole page at once except for words cut at a chunk boundary.
func (b *Builder) IndexPage(ctx context.Context, page *model.Page) error {
	text := lemma.StripTags(page.Content)

	var chunks []string
	if utf8.RuneCountInString(page.Content) > b.chunkThreshold {
		chunks = splitChunks(text, b.chunkSize)
	} else {
		chunks = []string{text}
	}

	pending := make(map[string]int)
	total := 0
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		for l, n := range b.extractor.CountLemmas(chunk) {
			pending[l] += n
		}
		if (i+1)%b.flushEvery == 0 {
			if err := b.flush(ctx, page, pending); err != nil {
				return err
			}
			total += len(pending)
			pending = make(map[string]int)
		}
	}
	if err := b.flush(ctx, page, pending); err != nil {
		return err
	}
	total += len(pending)

	b.metrics.PageIndexed(total)
	b.logger.Debug("indexed page", "site_id", page.SiteID, "path", page.Path, "lemmas", total, "chunks", len(chunks))
	return nil
}

func (b *Builder) flush(ctx context.Context, page *model.Page, counts map[string]int) error {
	if len(counts) == 0 {
		return nil
	}
	lock := b.siteLock(page.SiteID)
	lock.Lock()
	defer lock.Unlock()

	if err := b.store.AddLemmaCounts(ctx, page.SiteID, page.ID, counts); err != nil {
		b.metrics.IndexFailed()
		return fmt.Errorf("failed to index page %s: %w", page.Path, err)
	}
	return nil
}

// siteLock returns the mutex guarding lemma writes of one site.
func (b *Builder) siteLock(siteID int64) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.siteLocks[siteID]
	if !ok {
		l = &sync.Mutex{}
		b.siteLocks[siteID] = l
	}
	return l
}

// splitChunks cuts text into pieces of about size characters. A cut is
// moved forward to the next space so words stay whole where possible.
func splitChunks(text string, size int) []string {
	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		for end < len(runes) && end-start < 2*size && !unicode.IsSpace(runes[end]) {
			end++
		}
		chunks = append(chunks, string(runes[start:end]))
		start = end
	}
	return chunks
}
