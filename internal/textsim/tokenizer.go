// Package textsim implements the lexical similarity model used to gate
// conflict detection: tokenization, TF-IDF vectorization, cosine and
// Jaccard similarity, and keyword extraction. It is purely statistical;
// no learned embeddings are involved.
package textsim

import (
	"strings"
	"unicode"
)

// Tokenize splits text into normalized tokens. Runs of letters or digits
// in scripts with word boundaries are lower-cased and emitted whole.
// Runs in scripts without word boundaries (Han, kana, Hangul) are emitted
// as overlapping 2-rune shingles so frequency statistics stay meaningful;
// a lone rune is emitted as-is. Whitespace and punctuation only separate.
// Empty or whitespace-only input yields an empty slice, never an error.
func Tokenize(text string) []string {
	var tokens []string
	var word []rune
	var run []rune

	flushWord := func() {
		if len(word) > 0 {
			tokens = append(tokens, strings.ToLower(string(word)))
			word = word[:0]
		}
	}
	flushRun := func() {
		switch {
		case len(run) == 1:
			tokens = append(tokens, string(run))
		case len(run) > 1:
			for i := 0; i+1 < len(run); i++ {
				tokens = append(tokens, string(run[i:i+2]))
			}
		}
		run = run[:0]
	}

	for _, r := range text {
		switch {
		case isUnsegmented(r):
			flushWord()
			run = append(run, r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			flushRun()
			word = append(word, r)
		default:
			flushWord()
			flushRun()
		}
	}
	flushWord()
	flushRun()
	return tokens
}

// isUnsegmented reports whether r belongs to a script written without
// whitespace word boundaries.
func isUnsegmented(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}
