package catalog

import (
	"strings"
)

// Tokenize lowercases s and splits it on every run of characters that are
// not ASCII letters or digits. Empty tokens are dropped.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !isTokenRune(r)
	})
}

func isTokenRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// queryTerms splits free text into lowercase whitespace-separated terms.
// Unlike Tokenize it keeps punctuation, so "img_01" stays a single term.
func queryTerms(s string) []string {
	return strings.Fields(strings.ToLower(s))
}
