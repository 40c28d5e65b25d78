package lemma

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/sitesearch/internal/morphology"
)

// MinWordLength is the shortest token, in letters, that can become a lemma.
const MinWordLength = 3

// Alphabet decides which runes are word letters.
type Alphabet interface {
	Contains(r rune) bool
	Fold(word string) string
}

// Extractor turns text into lemma counts using a morphology.Provider.
// It is safe for concurrent use.
type Extractor struct {
	provider morphology.Provider
	alphabet Alphabet
	tag      language.Tag
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithAlphabet sets the alphabet used to split text into words.
// The default is morphology.Russian.
func WithAlphabet(a Alphabet) Option {
	return func(e *Extractor) {
		e.alphabet = a
	}
}

// WithLanguageTag sets the language used for case folding.
func WithLanguageTag(tag language.Tag) Option {
	return func(e *Extractor) {
		e.tag = tag
	}
}

// NewExtractor creates an Extractor over provider.
func NewExtractor(provider morphology.Provider, opts ...Option) *Extractor {
	e := &Extractor{
		provider: provider,
		alphabet: morphology.Russian,
		tag:      language.Russian,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewForLanguage builds a Snowball-backed Extractor for a language name.
func NewForLanguage(name string) (*Extractor, error) {
	p, err := morphology.New(name)
	if err != nil {
		return nil, err
	}
	tag := language.Russian
	if p.Language() == morphology.English {
		tag = language.English
	}
	return NewExtractor(p, WithAlphabet(p.Language()), WithLanguageTag(tag)), nil
}

// CollectLemmas strips markup from text and returns how many times each
// lemma occurs. Short tokens, function words and tokens the provider cannot
// analyze are skipped. The result is deterministic for a given input.
func (e *Extractor) CollectLemmas(text string) map[string]int {
	return e.CountLemmas(StripTags(text))
}

// CountLemmas is CollectLemmas for text that is already free of markup.
func (e *Extractor) CountLemmas(text string) map[string]int {
	counts := make(map[string]int)
	for _, word := range e.Words(text) {
		if l, ok := e.Lemma(word); ok {
			counts[l]++
		}
	}
	return counts
}

// LemmaSet returns the distinct lemmas of plain text (no markup stripping).
func (e *Extractor) LemmaSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range e.Words(text) {
		if l, ok := e.Lemma(word); ok {
			set[l] = struct{}{}
		}
	}
	return set
}

// Words lowercases text, turns every rune outside the alphabet into a
// separator and returns the remaining tokens.
func (e *Extractor) Words(text string) []string {
	lower := e.alphabet.Fold(cases.Lower(e.tag).String(text))
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !e.alphabet.Contains(r)
	})
}

// Lemma resolves one token to its lemma. It reports false when the token
// is too short, mixes scripts, is a function word or cannot be analyzed.
func (e *Extractor) Lemma(word string) (string, bool) {
	word = e.alphabet.Fold(cases.Lower(e.tag).String(word))
	if !e.isWordShaped(word) {
		return "", false
	}

	parses, err := e.provider.Analyze(word)
	if err != nil || len(parses) == 0 {
		return "", false
	}
	if best := closestParse(parses, word); best.Tag.IsFunctionWord() {
		return "", false
	}

	l, err := e.provider.Normalize(word)
	if err != nil || l == "" {
		return "", false
	}
	return l, true
}

// isWordShaped rejects tokens shorter than MinWordLength and tokens that
// mix letters of the alphabet with other letters.
func (e *Extractor) isWordShaped(word string) bool {
	if utf8.RuneCountInString(word) < MinWordLength {
		return false
	}
	for _, r := range word {
		if !e.alphabet.Contains(r) || !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// closestParse picks the parse whose stem length is nearest the token's
// length. The first parse wins ties.
func closestParse(parses []morphology.Parse, word string) morphology.Parse {
	n := utf8.RuneCountInString(word)
	best := parses[0]
	bestDiff := abs(utf8.RuneCountInString(best.Stem) - n)
	for _, p := range parses[1:] {
		if d := abs(utf8.RuneCountInString(p.Stem) - n); d < bestDiff {
			best, bestDiff = p, d
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
