package database

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nao1215/sitesearch/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *Store {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustCreateSite(t *testing.T, db *Store, url string) *model.Site {
	t.Helper()

	site, err := db.CreateSite(context.Background(), "Example", url, model.StatusIndexing)
	if err != nil {
		t.Fatalf("failed to create site: %v", err)
	}
	return site
}

func mustInsertPage(t *testing.T, db *Store, siteID int64, path string) *model.Page {
	t.Helper()

	page := &model.Page{SiteID: siteID, Path: path, Code: 200, Content: "<html></html>"}
	ok, err := db.InsertPage(context.Background(), page)
	if err != nil || !ok {
		t.Fatalf("failed to insert page %s: ok=%v err=%v", path, ok, err)
	}
	return page
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, DBFileName)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if db.Path() != filepath.Join(dbDir, DBFileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("fails without CreateIfNotExists", func(t *testing.T) {
		t.Parallel()

		opts := DefaultOptions()
		opts.CreateIfNotExists = false
		if _, err := Open(t.TempDir(), opts); err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("reopen keeps data", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		mustCreateSite(t, db, "https://example.com/")
		_ = db.Close()

		db, err = Open(dir, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()
		sites, err := db.ListSites(context.Background())
		if err != nil || len(sites) != 1 {
			t.Errorf("expected one site after reopen, got %d (err=%v)", len(sites), err)
		}
	})
}

func TestSiteLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)

	site := mustCreateSite(t, db, "https://example.com/")
	if site.ID == 0 || site.Status != model.StatusIndexing {
		t.Fatalf("unexpected site %+v", site)
	}

	indexing, err := db.HasIndexingSites(ctx)
	if err != nil || !indexing {
		t.Fatalf("expected an indexing site, got %v (err=%v)", indexing, err)
	}

	ok, err := db.TransitionSiteStatus(ctx, site.ID, model.StatusIndexing, model.StatusIndexed, "")
	if err != nil || !ok {
		t.Fatalf("expected transition to succeed, ok=%v err=%v", ok, err)
	}
	ok, err = db.TransitionSiteStatus(ctx, site.ID, model.StatusIndexing, model.StatusFailed, "late")
	if err != nil || ok {
		t.Fatalf("expected transition from wrong status to be a no-op, ok=%v err=%v", ok, err)
	}

	if err := db.UpdateSiteStatus(ctx, site.ID, model.StatusFailed, "boom"); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetSiteByURL(ctx, "https://example.com/")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.StatusFailed || got.LastError != "boom" || got.StatusTime.IsZero() {
		t.Errorf("unexpected site after update %+v", got)
	}

	missing, err := db.GetSiteByURL(ctx, "https://nope.example.com/")
	if err != nil || missing != nil {
		t.Errorf("expected nil site, got %+v (err=%v)", missing, err)
	}
	if err := db.TouchSite(ctx, site.ID); err != nil {
		t.Errorf("touch failed: %v", err)
	}
}

func TestFailIndexingSites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)

	a := mustCreateSite(t, db, "https://a.example.com/")
	b := mustCreateSite(t, db, "https://b.example.com/")
	if err := db.UpdateSiteStatus(ctx, b.ID, model.StatusIndexed, ""); err != nil {
		t.Fatal(err)
	}

	n, err := db.FailIndexingSites(ctx, "interrupted")
	if err != nil || n != 1 {
		t.Fatalf("expected one site failed, got %d (err=%v)", n, err)
	}
	got, _ := db.GetSite(ctx, a.ID)
	if got.Status != model.StatusFailed || got.LastError != "interrupted" {
		t.Errorf("unexpected site %+v", got)
	}
	got, _ = db.GetSite(ctx, b.ID)
	if got.Status != model.StatusIndexed {
		t.Errorf("indexed site should be untouched, got %+v", got)
	}
}

func TestInsertPage_UniquePerSitePath(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	site := mustCreateSite(t, db, "https://example.com/")

	const racers = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
	)
	for range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := db.InsertPage(ctx, &model.Page{SiteID: site.ID, Path: "/same", Code: 200, Content: "x"})
			if err != nil {
				t.Errorf("insert failed: %v", err)
				return
			}
			if ok {
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if inserted != 1 {
		t.Errorf("expected exactly one insert to win, got %d", inserted)
	}
	n, err := db.CountPages(ctx, site.ID)
	if err != nil || n != 1 {
		t.Errorf("expected one page row, got %d (err=%v)", n, err)
	}

	exists, err := db.PageExists(ctx, site.ID, "/same")
	if err != nil || !exists {
		t.Errorf("expected page to exist, got %v (err=%v)", exists, err)
	}
}

func TestAddLemmaCounts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	site := mustCreateSite(t, db, "https://example.com/")
	p1 := mustInsertPage(t, db, site.ID, "/one")
	p2 := mustInsertPage(t, db, site.ID, "/two")

	if err := db.AddLemmaCounts(ctx, site.ID, p1.ID, map[string]int{"кошка": 2, "дом": 1}); err != nil {
		t.Fatal(err)
	}
	// second chunk of the same page accumulates into the same Index row
	if err := db.AddLemmaCounts(ctx, site.ID, p1.ID, map[string]int{"кошка": 1}); err != nil {
		t.Fatal(err)
	}
	if err := db.AddLemmaCounts(ctx, site.ID, p2.ID, map[string]int{"кошка": 4}); err != nil {
		t.Fatal(err)
	}

	lemmas, err := db.FindLemmas(ctx, site.ID, []string{"кошка", "дом", "собака"})
	if err != nil {
		t.Fatal(err)
	}
	if len(lemmas) != 2 {
		t.Fatalf("expected 2 lemmas, got %+v", lemmas)
	}
	// ordered by ascending frequency
	if lemmas[0].Lemma != "дом" || lemmas[0].Frequency != 1 {
		t.Errorf("unexpected first lemma %+v", lemmas[0])
	}
	if lemmas[1].Lemma != "кошка" || lemmas[1].Frequency != 7 {
		t.Errorf("unexpected second lemma %+v", lemmas[1])
	}

	idx, err := db.IndexesForPage(ctx, p1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(idx) != 2 {
		t.Fatalf("expected one Index row per lemma, got %+v", idx)
	}

	pages, err := db.PageIDsForLemma(ctx, lemmas[1].ID)
	if err != nil || len(pages) != 2 {
		t.Errorf("expected two pages for lemma, got %v (err=%v)", pages, err)
	}

	rel, err := db.PageRelevance(ctx, p1.ID, []int64{lemmas[0].ID, lemmas[1].ID})
	if err != nil || rel != 4 {
		t.Errorf("expected relevance 4, got %v (err=%v)", rel, err)
	}
	rel, err = db.PageRelevance(ctx, p2.ID, []int64{lemmas[0].ID})
	if err != nil || rel != 0 {
		t.Errorf("expected relevance 0, got %v (err=%v)", rel, err)
	}

	total, err := db.CountLemmas(ctx, 0)
	if err != nil || total != 2 {
		t.Errorf("expected 2 lemmas total, got %d (err=%v)", total, err)
	}
}

func TestDeletePage_WithdrawsContribution(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	site := mustCreateSite(t, db, "https://example.com/")
	p1 := mustInsertPage(t, db, site.ID, "/one")
	p2 := mustInsertPage(t, db, site.ID, "/two")

	if err := db.AddLemmaCounts(ctx, site.ID, p1.ID, map[string]int{"кошка": 2, "дом": 3}); err != nil {
		t.Fatal(err)
	}
	if err := db.AddLemmaCounts(ctx, site.ID, p2.ID, map[string]int{"кошка": 5}); err != nil {
		t.Fatal(err)
	}

	found, err := db.DeletePage(ctx, site.ID, "/one")
	if err != nil || !found {
		t.Fatalf("expected page deleted, found=%v err=%v", found, err)
	}

	lemmas, err := db.FindLemmas(ctx, site.ID, []string{"кошка", "дом"})
	if err != nil {
		t.Fatal(err)
	}
	if len(lemmas) != 1 || lemmas[0].Lemma != "кошка" || lemmas[0].Frequency != 5 {
		t.Errorf("unexpected lemmas after delete %+v", lemmas)
	}
	if page, _ := db.GetPage(ctx, p1.ID); page != nil {
		t.Errorf("page should be gone, got %+v", page)
	}

	found, err = db.DeletePage(ctx, site.ID, "/missing")
	if err != nil || found {
		t.Errorf("expected no page, found=%v err=%v", found, err)
	}
}

func TestDeleteSitesByURL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	site := mustCreateSite(t, db, "https://example.com/")
	other := mustCreateSite(t, db, "https://other.example.com/")
	page := mustInsertPage(t, db, site.ID, "/")
	otherPage := mustInsertPage(t, db, other.ID, "/")
	if err := db.AddLemmaCounts(ctx, site.ID, page.ID, map[string]int{"слово": 1}); err != nil {
		t.Fatal(err)
	}
	if err := db.AddLemmaCounts(ctx, other.ID, otherPage.ID, map[string]int{"слово": 1}); err != nil {
		t.Fatal(err)
	}

	n, err := db.DeleteSitesByURL(ctx, "https://example.com/")
	if err != nil || n != 1 {
		t.Fatalf("expected 1 site removed, got %d (err=%v)", n, err)
	}

	for _, c := range []struct {
		name string
		fn   func(context.Context, int64) (int64, error)
		want int64
	}{
		{"pages", db.CountPages, 1},
		{"lemmas", db.CountLemmas, 1},
	} {
		got, err := c.fn(ctx, 0)
		if err != nil || got != c.want {
			t.Errorf("%s: expected %d, got %d (err=%v)", c.name, c.want, got, err)
		}
	}

	sites, err := db.ListSites(ctx)
	if err != nil || len(sites) != 1 || sites[0].URL != "https://other.example.com/" {
		t.Errorf("unexpected sites %+v (err=%v)", sites, err)
	}
}
