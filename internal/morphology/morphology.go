package morphology

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kljensen/snowball"
)

// ErrUnknownWord is returned when a token cannot be analyzed, for example
// because it contains letters outside the provider's alphabet.
var ErrUnknownWord = errors.New("unknown word")

// ErrUnsupportedLanguage is returned by New for a language without a dictionary.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Tag is a part-of-speech label attached to a Parse.
type Tag string

// Part-of-speech tags. Only the function-word tags are distinguished;
// every other word is TagContent.
const (
	TagContent          Tag = "CONTENT"
	TagInterjection     Tag = "INTJ"
	TagPreposition      Tag = "PREP"
	TagConjunction      Tag = "CONJ"
	TagPronounAdjective Tag = "PRON-ADJ"
	TagParticle         Tag = "PART"
	TagPronoun          Tag = "PRON"
)

// IsFunctionWord reports whether the tag marks a word that carries no
// searchable meaning of its own.
func (t Tag) IsFunctionWord() bool {
	switch t {
	case TagInterjection, TagPreposition, TagConjunction, TagPronounAdjective, TagParticle, TagPronoun:
		return true
	default:
		return false
	}
}

// Parse is one candidate analysis of a word.
type Parse struct {
	// Stem is the base form proposed by this analysis.
	Stem string

	// Tag is the part of speech of this analysis.
	Tag Tag
}

// Provider analyzes single lowercase words.
// Both methods fail with ErrUnknownWord for tokens they cannot handle.
type Provider interface {
	// Analyze returns every candidate parse of word.
	Analyze(word string) ([]Parse, error)

	// Normalize returns the primary normalized form of word.
	Normalize(word string) (string, error)
}

// Language describes the alphabet and function-word dictionary of one language.
type Language struct {
	// Name is the snowball stemmer name ("russian", "english").
	Name string

	// Letters lists every lowercase letter of the alphabet.
	Letters string

	// fold maps letters that are written interchangeably onto one form.
	fold *strings.Replacer

	// functionWords maps a lowercase word to its function-word tag.
	functionWords map[string]Tag
}

// Contains reports whether r is a lowercase letter of the alphabet.
func (l *Language) Contains(r rune) bool {
	return strings.ContainsRune(l.Letters, r)
}

// Fold applies the language's letter folding, e.g. "ё" to "е" in Russian.
func (l *Language) Fold(word string) string {
	if l.fold == nil {
		return word
	}
	return l.fold.Replace(word)
}

// Lookup returns the language for name.
func Lookup(name string) (*Language, error) {
	switch strings.ToLower(name) {
	case Russian.Name:
		return Russian, nil
	case English.Name:
		return English, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, name)
	}
}

// SnowballProvider implements Provider with the Snowball stemmer and a
// closed-class dictionary of function words.
type SnowballProvider struct {
	lang *Language
}

// New returns a SnowballProvider for the named language.
func New(language string) (*SnowballProvider, error) {
	lang, err := Lookup(language)
	if err != nil {
		return nil, err
	}
	return &SnowballProvider{lang: lang}, nil
}

// Language returns the provider's language.
func (p *SnowballProvider) Language() *Language {
	return p.lang
}

// Analyze returns a single parse: the dictionary tag for function words,
// TagContent for everything else. The stem of a function word is the word itself.
func (p *SnowballProvider) Analyze(word string) ([]Parse, error) {
	word, err := p.check(word)
	if err != nil {
		return nil, err
	}
	if tag, ok := p.lang.functionWords[word]; ok {
		return []Parse{{Stem: word, Tag: tag}}, nil
	}
	stem, err := p.stem(word)
	if err != nil {
		return nil, err
	}
	return []Parse{{Stem: stem, Tag: TagContent}}, nil
}

// Normalize returns the Snowball stem of word.
func (p *SnowballProvider) Normalize(word string) (string, error) {
	word, err := p.check(word)
	if err != nil {
		return "", err
	}
	if _, ok := p.lang.functionWords[word]; ok {
		return word, nil
	}
	return p.stem(word)
}

func (p *SnowballProvider) check(word string) (string, error) {
	word = p.lang.Fold(strings.ToLower(word))
	if word == "" {
		return "", ErrUnknownWord
	}
	for _, r := range word {
		if !p.lang.Contains(r) {
			return "", fmt.Errorf("%w: %q", ErrUnknownWord, word)
		}
	}
	return word, nil
}

func (p *SnowballProvider) stem(word string) (string, error) {
	stem, err := snowball.Stem(word, p.lang.Name, true)
	if err != nil {
		return "", fmt.Errorf("failed to stem %q: %w", word, err)
	}
	if stem == "" {
		return "", fmt.Errorf("%w: %q", ErrUnknownWord, word)
	}
	return stem, nil
}
