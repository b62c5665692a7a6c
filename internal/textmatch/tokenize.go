// Package textmatch finds whole-word phrases in normalized text.
//
// Text and phrases go through the same tokenizer so that "U.S.", "u.s" and
// "US" all become the token US, and "Iran's" yields IRAN. Matching works
// on tokens, never on raw substrings, so AMERICAN never matches inside
// PANAMERICAN.
package textmatch

import (
	"strings"
	"unicode"
)

// Tokenize splits s into upper-cased word tokens.
func Tokenize(s string) []string {
	return tokenize(s, true)
}

// TokenizeOriginal splits s exactly like Tokenize but keeps the original
// letter case. Its output is aligned index for index with Tokenize(s).
func TokenizeOriginal(s string) []string {
	return tokenize(s, false)
}

// Normalize returns the tokens of s joined by single spaces.
func Normalize(s string) string {
	return strings.Join(Tokenize(s), " ")
}

// tokenize rules: periods vanish (U.S. -> US), hyphens survive only
// between two word characters, everything that is not a letter or digit
// separates tokens.
func tokenize(s string, upper bool) []string {
	if s == "" {
		return nil
	}
	rs := []rune(s)
	var (
		words []string
		b     strings.Builder
	)
	flush := func() {
		if b.Len() > 0 {
			words = append(words, b.String())
			b.Reset()
		}
	}
	for i, r := range rs {
		switch {
		case isWordRune(r):
			if upper {
				r = unicode.ToUpper(r)
			}
			b.WriteRune(r)
		case r == '.':
			// dropped without splitting
		case r == '-' && b.Len() > 0 && i+1 < len(rs) && isWordRune(rs[i+1]):
			b.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return words
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
