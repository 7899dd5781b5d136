package ingest

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeText lowercases, strips diacritics, and collapses whitespace so
// that surface variations of the same text converge to one key. Shared by
// fingerprint derivation and the audit reporter.
func NormalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	return strings.Join(strings.Fields(s), " ")
}

// tokenize splits normalized text into a token set for similarity
// comparison. Punctuation-only tokens are discarded.
func tokenize(s string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, field := range strings.Fields(NormalizeText(s)) {
		field = strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if field != "" {
			tokens[field] = struct{}{}
		}
	}
	return tokens
}
