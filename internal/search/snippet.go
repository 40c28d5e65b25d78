package search

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"github.com/nao1215/sitesearch/internal/lemma"
)

const (
	snippetLength  = 150
	snippetPadding = 50
	ellipsis       = "..."
	emphasisOpen   = "<b>"
	emphasisClose  = "</b>"
)

// Terms is what a snippet highlights: the query's literal words and their lemmas.
type Terms struct {
	extractor *lemma.Extractor
	words     map[string]struct{}
	lemmas    map[string]struct{}
}

func newTerms(extractor *lemma.Extractor, query string) Terms {
	t := Terms{
		extractor: extractor,
		words:     make(map[string]struct{}),
		lemmas:    extractor.LemmaSet(query),
	}
	for _, w := range extractor.Words(query) {
		t.words[w] = struct{}{}
	}
	return t
}

// matches reports whether token is a query word or shares a lemma with one.
func (t Terms) matches(token string) bool {
	folded := t.extractor.Words(token)
	if len(folded) != 1 {
		return false
	}
	if _, ok := t.words[folded[0]]; ok {
		return true
	}
	l, ok := t.extractor.Lemma(folded[0])
	if !ok {
		return false
	}
	_, ok = t.lemmas[l]
	return ok
}

// span is a half-open rune range of the text.
type span struct {
	start, end int
}

// Snippet returns a fragment of the page text around the densest cluster
// of matches, with every match wrapped in <b> tags. Without whole-word
// matches it falls back to the leading text, highlighting literal query
// words found there.
func Snippet(content string, terms Terms) string {
	text := []rune(strings.Join(strings.Fields(lemma.StripTags(content)), " "))
	matches := findMatches(text, terms)
	if len(matches) == 0 {
		return fallbackSnippet(text, terms)
	}

	start, end := bestWindow(len(text), matches)
	return render(text, start, end, matches)
}

// findMatches tokenizes text on letter and digit runs and returns the
// spans of matching tokens in order.
func findMatches(text []rune, terms Terms) []span {
	var out []span
	for i := 0; i < len(text); {
		if !isWordRune(text[i]) {
			i++
			continue
		}
		j := i
		for j < len(text) && isWordRune(text[j]) {
			j++
		}
		if terms.matches(string(text[i:j])) {
			out = append(out, span{i, j})
		}
		i = j
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// bestWindow anchors a window of snippetLength runes snippetPadding runes
// before each match and keeps the one covering the most matches. The
// earliest window wins ties.
func bestWindow(textLen int, matches []span) (int, int) {
	bestStart, bestEnd, bestCount := 0, 0, -1
	for _, m := range matches {
		start := max(m.start-snippetPadding, 0)
		end := min(start+snippetLength, textLen)
		count := 0
		for _, o := range matches {
			if o.start >= start && o.end <= end {
				count++
			}
		}
		if count > bestCount {
			bestStart, bestEnd, bestCount = start, end, count
		}
	}
	return bestStart, bestEnd
}

func render(text []rune, start, end int, matches []span) string {
	var b strings.Builder
	if start > 0 {
		b.WriteString(ellipsis)
	}
	pos := start
	for _, m := range matches {
		if m.start < start || m.end > end {
			continue
		}
		b.WriteString(string(text[pos:m.start]))
		b.WriteString(emphasisOpen)
		b.WriteString(string(text[m.start:m.end]))
		b.WriteString(emphasisClose)
		pos = m.end
	}
	b.WriteString(string(text[pos:end]))
	if end < len(text) {
		b.WriteString(ellipsis)
	}
	return b.String()
}

// fallbackSnippet returns the leading text with literal, case-insensitive
// whole-word occurrences of query words highlighted.
func fallbackSnippet(text []rune, terms Terms) string {
	end := min(snippetLength, len(text))
	head := text[:end]
	lower := []rune(strings.ToLower(string(head)))
	if len(lower) != len(head) {
		lower = head
	}

	var found []span
	for w := range terms.words {
		needle := []rune(w)
		if len(needle) < lemma.MinWordLength {
			continue
		}
		for i := 0; i+len(needle) <= len(lower); i++ {
			j := i + len(needle)
			if string(lower[i:j]) != w {
				continue
			}
			if (i > 0 && isWordRune(lower[i-1])) || (j < len(lower) && isWordRune(lower[j])) {
				continue
			}
			found = append(found, span{i, j})
		}
	}
	found = dropOverlaps(found)

	out := render(head, 0, end, found)
	if end < len(text) {
		out += ellipsis
	}
	return out
}

// dropOverlaps sorts spans by start and removes spans overlapping an earlier one.
func dropOverlaps(spans []span) []span {
	slices.SortFunc(spans, func(a, b span) int {
		return cmp.Or(cmp.Compare(a.start, b.start), cmp.Compare(b.end, a.end))
	})
	out := spans[:0]
	last := -1
	for _, s := range spans {
		if s.start < last {
			continue
		}
		out = append(out, s)
		last = s.end
	}
	return out
}
