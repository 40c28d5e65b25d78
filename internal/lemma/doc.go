// Package lemma extracts lemma counts from page text.
//
// Text is stripped of markup, lowercased, split on every rune outside the
// configured alphabet and filtered: tokens shorter than three letters and
// function words (prepositions, conjunctions, particles, interjections,
// pronouns) are dropped, and tokens the morphology provider rejects are
// skipped silently.
package lemma
