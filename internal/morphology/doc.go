// Package morphology turns single words into base forms.
//
// The Provider interface is the seam between the lemma extractor and a
// concrete morphological analyzer. SnowballProvider backs it with the
// Snowball stemmer (github.com/kljensen/snowball) and a small closed-class
// dictionary that tags prepositions, conjunctions, particles, interjections
// and pronouns so the extractor can drop them.
package morphology
