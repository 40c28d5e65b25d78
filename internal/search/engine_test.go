package search

import (
	"context"
	"strings"
	"testing"

	"github.com/nao1215/sitesearch/internal/database"
	"github.com/nao1215/sitesearch/internal/lemma"
	"github.com/nao1215/sitesearch/internal/log"
	"github.com/nao1215/sitesearch/internal/model"
)

func newExtractor(t *testing.T) *lemma.Extractor {
	t.Helper()
	e, err := lemma.NewForLanguage("english")
	if err != nil {
		t.Fatal(err)
	}
	return e
}

type fixture struct {
	store  *database.Store
	engine *Engine
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return &fixture{
		store:  store,
		engine: NewEngine(store, newExtractor(t), WithLogger(log.Discard())),
	}
}

func (f *fixture) site(t *testing.T, name, url string, status model.SiteStatus) *model.Site {
	t.Helper()
	site, err := f.store.CreateSite(context.Background(), name, url, status)
	if err != nil {
		t.Fatal(err)
	}
	return site
}

func (f *fixture) page(t *testing.T, site *model.Site, path, content string, counts map[string]int) {
	t.Helper()
	ctx := context.Background()
	page := &model.Page{SiteID: site.ID, Path: path, Code: 200, Content: content}
	if _, err := f.store.InsertPage(ctx, page); err != nil {
		t.Fatal(err)
	}
	if err := f.store.AddLemmaCounts(ctx, site.ID, page.ID, counts); err != nil {
		t.Fatal(err)
	}
}

func TestSearch_Rejections(t *testing.T) {
	t.Parallel()

	t.Run("empty query", func(t *testing.T) {
		t.Parallel()
		f := setup(t)
		resp := f.engine.Search(context.Background(), Query{Text: "   "})
		if resp.Result || resp.Error != ErrEmptyQuery.Error() {
			t.Errorf("unexpected response %+v", resp)
		}
	})

	t.Run("indexing in progress", func(t *testing.T) {
		t.Parallel()
		f := setup(t)
		f.site(t, "Busy", "https://busy.example/", model.StatusIndexing)
		resp := f.engine.Search(context.Background(), Query{Text: "cats"})
		if resp.Result || resp.Error != ErrIndexingInProgress.Error() {
			t.Errorf("unexpected response %+v", resp)
		}
	})

	t.Run("no indexed lemma", func(t *testing.T) {
		t.Parallel()
		f := setup(t)
		site := f.site(t, "Zoo", "https://zoo.example/", model.StatusIndexed)
		f.page(t, site, "/", "<p>cats</p>", map[string]int{"cat": 1})

		resp := f.engine.Search(context.Background(), Query{Text: "zebras"})
		if resp.Result || resp.Count != 0 || resp.Error != ErrNoMatches.Error() {
			t.Errorf("unexpected response %+v", resp)
		}
		if resp.Data == nil {
			t.Error("failed responses must carry an empty data slice")
		}
	})
}

func TestSearch_RelevanceIsMaxOverOwn(t *testing.T) {
	t.Parallel()

	f := setup(t)
	site := f.site(t, "Zoo", "https://zoo.example/", model.StatusIndexed)
	f.page(t, site, "/weak", "<title>Weak</title><p>cats</p>", map[string]int{"cat": 2})
	f.page(t, site, "/strong", "<title>Strong</title><p>cats cats</p>", map[string]int{"cat": 4})

	resp := f.engine.Search(context.Background(), Query{Text: "cat"})
	if !resp.Result {
		t.Fatalf("search failed: %s", resp.Error)
	}
	if resp.Count != 2 || len(resp.Data) != 2 {
		t.Fatalf("expected 2 results, got %+v", resp)
	}

	best, other := resp.Data[0], resp.Data[1]
	if best.URI != "/strong" || best.Relevance != 1.0 {
		t.Errorf("unexpected best result %+v", best)
	}
	if other.URI != "/weak" || other.Relevance != 2.0 {
		t.Errorf("unexpected second result %+v", other)
	}
	if best.Title != "Strong" {
		t.Errorf("expected title Strong, got %q", best.Title)
	}
	if best.Site != "https://zoo.example" || best.SiteName != "Zoo" {
		t.Errorf("unexpected site fields %+v", best)
	}
}

func TestSearch_IntersectsLemmas(t *testing.T) {
	t.Parallel()

	f := setup(t)
	site := f.site(t, "Zoo", "https://zoo.example/", model.StatusIndexed)
	f.page(t, site, "/cats", "<p>cats</p>", map[string]int{"cat": 1})
	f.page(t, site, "/both", "<p>cats dogs</p>", map[string]int{"cat": 1, "dog": 1})
	f.page(t, site, "/dogs", "<p>dogs</p>", map[string]int{"dog": 1})

	resp := f.engine.Search(context.Background(), Query{Text: "cats and dogs"})
	if !resp.Result || resp.Count != 1 || resp.Data[0].URI != "/both" {
		t.Errorf("expected only /both, got %+v", resp)
	}
}

func TestSearch_SiteScope(t *testing.T) {
	t.Parallel()

	f := setup(t)
	a := f.site(t, "A", "https://a.example/", model.StatusIndexed)
	b := f.site(t, "B", "https://b.example/", model.StatusIndexed)
	f.page(t, a, "/", "<p>cats</p>", map[string]int{"cat": 1})
	f.page(t, b, "/", "<p>cats</p>", map[string]int{"cat": 1})

	tests := []struct {
		name  string
		scope string
		want  []string
	}{
		{name: "unscoped", scope: "", want: []string{"https://a.example", "https://b.example"}},
		{name: "scoped with slash", scope: "https://b.example/", want: []string{"https://b.example"}},
		{name: "scoped without slash", scope: "https://a.example", want: []string{"https://a.example"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.engine.Search(context.Background(), Query{Text: "cat", Site: tt.scope})
			if !resp.Result {
				t.Fatalf("search failed: %s", resp.Error)
			}
			var got []string
			for _, r := range resp.Data {
				got = append(got, r.Site)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("got sites %v, want %v", got, tt.want)
			}
		})
	}

	resp := f.engine.Search(context.Background(), Query{Text: "cat", Site: "https://c.example/"})
	if resp.Result || resp.Error != ErrNoMatches.Error() {
		t.Errorf("unknown site should have no matches, got %+v", resp)
	}
}

func TestSearch_OffsetAndLimit(t *testing.T) {
	t.Parallel()

	f := setup(t)
	site := f.site(t, "Zoo", "https://zoo.example/", model.StatusIndexed)
	for i, path := range []string{"/1", "/2", "/3", "/4"} {
		f.page(t, site, path, "<p>cats</p>", map[string]int{"cat": 10 - i})
	}

	resp := f.engine.Search(context.Background(), Query{Text: "cat", Offset: 1, Limit: 2})
	if !resp.Result {
		t.Fatalf("search failed: %s", resp.Error)
	}
	if resp.Count != 4 {
		t.Errorf("count must ignore paging, got %d", resp.Count)
	}
	if len(resp.Data) != 2 || resp.Data[0].URI != "/2" || resp.Data[1].URI != "/3" {
		t.Errorf("unexpected page %+v", resp.Data)
	}

	resp = f.engine.Search(context.Background(), Query{Text: "cat", Offset: 10})
	if !resp.Result || resp.Count != 4 || len(resp.Data) != 0 {
		t.Errorf("offset past the end should be empty, got %+v", resp)
	}
}

func TestIntersect(t *testing.T) {
	t.Parallel()

	got := intersect([]int64{1, 3, 5, 7}, []int64{2, 3, 4, 7, 9})
	if len(got) != 2 || got[0] != 3 || got[1] != 7 {
		t.Errorf("unexpected intersection %v", got)
	}
	if got := intersect(nil, []int64{1}); len(got) != 0 {
		t.Errorf("expected empty intersection, got %v", got)
	}
}
