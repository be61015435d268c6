package index

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

// Stop words excluded from the inverted index and partial matching.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// minTokenLength drops single-character noise tokens.
const minTokenLength = 2

// isCJK reports whether r falls in the CJK unified ideograph, hiragana,
// katakana, or hangul ranges. CJK text is kept verbatim because it does not
// use spaces or latin punctuation.
func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}

// Normalize lowercases text and replaces punctuation with spaces, preserving
// letters, digits, and CJK runes.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), isCJK(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// Tokenize normalizes text and splits it into index terms, dropping stop
// words and tokens shorter than minTokenLength.
func Tokenize(text string) []string {
	words := strings.Fields(Normalize(text))
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < minTokenLength || stopWords[w] {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// StemTokens applies the snowball english stemmer to each token, so that
// "engineers" and "engineering" share postings. Non-english tokens pass
// through unchanged.
func StemTokens(tokens []string) []string {
	stemmed := make([]string, len(tokens))
	for i, t := range tokens {
		stemmed[i] = english.Stem(t, false)
	}
	return stemmed
}
