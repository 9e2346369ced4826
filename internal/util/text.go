package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText folds free text into the form lexicon terms are matched against:
// NFKC, lowercase, punctuation replaced by spaces, whitespace collapsed.
// Hyphens survive ("one-sided", "3-day") and so do decimal points between digits ("1.5").
// Apostrophes are dropped so "can't" becomes "cant".
func NormalizeText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = strings.ToLower(norm.NFKC.String(s))

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '-':
			b.WriteRune(r)
		case r == '.' && i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]):
			b.WriteRune(r)
		case r == '\'' || r == '’':
			// dropped
		default:
			b.WriteRune(' ')
		}
	}

	fields := strings.Fields(b.String())
	kept := fields[:0]
	for _, f := range fields {
		if strings.Trim(f, "-") == "" {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// Tokens splits normalized text into words
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}
