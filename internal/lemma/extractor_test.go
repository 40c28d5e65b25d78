package lemma

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/nao1215/sitesearch/internal/morphology"
)

// fakeProvider is a deterministic morphology.Provider backed by maps.
type fakeProvider struct {
	parses map[string][]morphology.Parse
	norms  map[string]string
}

func (f *fakeProvider) Analyze(word string) ([]morphology.Parse, error) {
	if p, ok := f.parses[word]; ok {
		return p, nil
	}
	if _, ok := f.norms[word]; ok {
		return []morphology.Parse{{Stem: word, Tag: morphology.TagContent}}, nil
	}
	return nil, morphology.ErrUnknownWord
}

func (f *fakeProvider) Normalize(word string) (string, error) {
	if n, ok := f.norms[word]; ok {
		return n, nil
	}
	return "", errors.New("no normal form")
}

func newFake() *fakeProvider {
	return &fakeProvider{
		parses: map[string][]morphology.Parse{
			"через": {{Stem: "через", Tag: morphology.TagPreposition}},
			// ambiguous word: the parse with the closest stem length decides
			"стали": {
				{Stem: "ст", Tag: morphology.TagPronoun},
				{Stem: "стал", Tag: morphology.TagContent},
			},
			"мама": {
				{Stem: "мам", Tag: morphology.TagContent},
				{Stem: "мам", Tag: morphology.TagParticle},
			},
		},
		norms: map[string]string{
			"кошка":  "кошка",
			"кошки":  "кошка",
			"кошку":  "кошка",
			"дом":    "дом",
			"стали":  "сталь",
			"мама":   "мама",
			"елка":   "елка",
			"собака": "собака",
		},
	}
}

func TestCollectLemmas(t *testing.T) {
	t.Parallel()

	e := NewExtractor(newFake())

	tests := []struct {
		name string
		text string
		want map[string]int
	}{
		{
			name: "inflections collapse to one lemma",
			text: "Кошка, кошки и КОШКУ!",
			want: map[string]int{"кошка": 3},
		},
		{
			name: "markup is stripped",
			text: `<p class="дом">Дом</p><script>кошка</script><b>собака</b>`,
			want: map[string]int{"дом": 1, "собака": 1},
		},
		{
			name: "function words and short tokens are dropped",
			text: "через дом и по",
			want: map[string]int{"дом": 1},
		},
		{
			name: "closest parse decides function-word status",
			text: "стали мама",
			want: map[string]int{"сталь": 1, "мама": 1},
		},
		{
			name: "latin letters split words and unknown words are skipped",
			text: "кошкаhello123дом неизвестное",
			want: map[string]int{"кошка": 1, "дом": 1},
		},
		{
			name: "yo is folded",
			text: "Ёлка",
			want: map[string]int{"елка": 1},
		},
		{
			name: "empty text",
			text: "",
			want: map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := e.CollectLemmas(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CollectLemmas(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestCollectLemmas_Deterministic(t *testing.T) {
	t.Parallel()

	e := NewExtractor(newFake())
	text := strings.Repeat("кошка дом собака через ", 50)
	first := e.CollectLemmas(text)
	for range 5 {
		if got := e.CollectLemmas(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("non-deterministic result: %v vs %v", got, first)
		}
	}
	for l := range first {
		if len([]rune(l)) < MinWordLength {
			t.Errorf("lemma %q is shorter than %d", l, MinWordLength)
		}
	}
}

func TestLemma(t *testing.T) {
	t.Parallel()

	e := NewExtractor(newFake())
	if l, ok := e.Lemma("Кошки"); !ok || l != "кошка" {
		t.Errorf("Lemma(Кошки) = %q, %v", l, ok)
	}
	if _, ok := e.Lemma("через"); ok {
		t.Error("expected function word to be rejected")
	}
	if _, ok := e.Lemma("кот"); ok {
		t.Error("expected unknown word to be rejected")
	}
	if _, ok := e.Lemma("домdom"); ok {
		t.Error("expected mixed-script word to be rejected")
	}
}

func TestLemmaSet(t *testing.T) {
	t.Parallel()

	e := NewExtractor(newFake())
	got := e.LemmaSet("кошки и кошку")
	if len(got) != 1 {
		t.Errorf("expected one lemma, got %v", got)
	}
	if _, ok := got["кошка"]; !ok {
		t.Errorf("expected кошка in %v", got)
	}
}

func TestNewForLanguage(t *testing.T) {
	t.Parallel()

	e, err := NewForLanguage("english")
	if err != nil {
		t.Fatal(err)
	}
	got := e.CollectLemmas("<h1>Running runners</h1> and the dog runs")
	if got["run"] != 2 {
		t.Errorf("expected run twice, got %v", got)
	}
	if _, ok := got["and"]; ok {
		t.Errorf("function word leaked: %v", got)
	}

	if _, err := NewForLanguage("latin"); err == nil {
		t.Error("expected error for unsupported language")
	}

	ru := NewExtractor(newFake(), WithAlphabet(morphology.Russian), WithLanguageTag(language.Russian))
	if len(ru.Words("раз, два; три")) != 3 {
		t.Error("expected three words")
	}
}

func TestStripTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
		not  []string
	}{
		{name: "plain text untouched", in: "just text", want: []string{"just text"}},
		{name: "entities decoded", in: "<p>a&amp;b</p>", want: []string{"a&b"}},
		{name: "style dropped", in: "<style>.x{}</style><p>body</p>", want: []string{"body"}, not: []string{".x"}},
		{name: "truncated tag tolerated", in: "<p>hello</p><di", want: []string{"hello"}},
		{name: "tags become spaces", in: "one<br>two", want: []string{"one two"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := StripTags(tt.in)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("StripTags(%q) = %q, want it to contain %q", tt.in, got, w)
				}
			}
			for _, n := range tt.not {
				if strings.Contains(got, n) {
					t.Errorf("StripTags(%q) = %q, must not contain %q", tt.in, got, n)
				}
			}
		})
	}
}
