package indexing

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/nao1215/sitesearch/internal/model"
)

// Run is the shared state of one crawl: the stop flag, the fetch budget
// and a handle per site. It is passed explicitly to every page task.
type Run struct {
	stopped atomic.Bool
	fetches *semaphore.Weighted
	sites   []*siteCrawl
	done    chan struct{}
}

func newRun(maxFetches int64) *Run {
	if maxFetches <= 0 {
		maxFetches = 1
	}
	return &Run{
		fetches: semaphore.NewWeighted(maxFetches),
		done:    make(chan struct{}),
	}
}

// Stop raises the stop flag. Tasks observe it at their next decision point.
func (r *Run) Stop() {
	r.stopped.Store(true)
}

// Stopped reports whether Stop was called.
func (r *Run) Stopped() bool {
	return r.stopped.Load()
}

// Done is closed when every site of the run has reached a terminal status.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// siteCrawl is the per-site handle of a Run.
type siteCrawl struct {
	site  *model.Site
	scope string

	// claimed holds every path reserved by a task of this run.
	claimed sync.Map

	failed   atomic.Bool
	stopOnce sync.Once
	failOnce sync.Once
}

func newSiteCrawl(site *model.Site, scope string) *siteCrawl {
	return &siteCrawl{site: site, scope: scope}
}

// reserve claims path for the caller. Exactly one caller per path gets true.
func (sc *siteCrawl) reserve(path string) bool {
	_, loaded := sc.claimed.LoadOrStore(path, struct{}{})
	return !loaded
}

// reserved reports whether path has already been claimed.
func (sc *siteCrawl) reserved(path string) bool {
	_, ok := sc.claimed.Load(path)
	return ok
}
