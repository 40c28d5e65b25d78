package statistics

import (
	"context"
	"errors"
	"testing"

	"github.com/nao1215/sitesearch/internal/config"
	"github.com/nao1215/sitesearch/internal/database"
	"github.com/nao1215/sitesearch/internal/model"
)

func TestStatistics(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	site, err := store.CreateSite(ctx, "Crawled", "https://crawled.example/", model.StatusIndexing)
	if err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{"/", "/a"} {
		page := &model.Page{SiteID: site.ID, Path: path, Code: 200, Content: "<p>x</p>"}
		if _, err := store.InsertPage(ctx, page); err != nil {
			t.Fatal(err)
		}
		if err := store.AddLemmaCounts(ctx, site.ID, page.ID, map[string]int{"cat": 1, "dog": 1}); err != nil {
			t.Fatal(err)
		}
	}

	svc := NewService([]config.Site{
		{Name: "Crawled", URL: "https://crawled.example"},
		{Name: "Fresh", URL: "https://fresh.example/"},
	}, store)

	resp := svc.Statistics(ctx)
	if !resp.Result {
		t.Fatalf("statistics failed: %s", resp.Error)
	}

	total := resp.Statistics.Total
	if total.Sites != 2 || total.Pages != 2 || total.Lemmas != 2 || !total.Indexing {
		t.Errorf("unexpected totals %+v", total)
	}

	detailed := resp.Statistics.Detailed
	if len(detailed) != 2 {
		t.Fatalf("expected 2 detailed items, got %d", len(detailed))
	}
	if d := detailed[0]; d.Status != "INDEXING" || d.Pages != 2 || d.Lemmas != 2 || d.StatusTime == 0 {
		t.Errorf("unexpected crawled item %+v", d)
	}
	if d := detailed[1]; d.Status != "" || d.Pages != 0 || d.URL != "https://fresh.example/" {
		t.Errorf("unexpected fresh item %+v", d)
	}
}

type brokenStore struct{}

func (brokenStore) GetSiteByURL(context.Context, string) (*model.Site, error) {
	return nil, errors.New("database is locked")
}

func (brokenStore) CountPages(context.Context, int64) (int64, error)  { return 0, nil }
func (brokenStore) CountLemmas(context.Context, int64) (int64, error) { return 0, nil }

func TestStatistics_StoreError(t *testing.T) {
	t.Parallel()

	svc := NewService([]config.Site{{Name: "A", URL: "https://a.example"}}, brokenStore{})
	resp := svc.Statistics(context.Background())
	if resp.Result || resp.Error != "database is locked" {
		t.Errorf("unexpected response %+v", resp)
	}
}
