package mnemonic

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// A Caser keeps state, so each call gets its own.
func lowerString(s string) string {
	return cases.Lower(language.Und).String(s)
}

func normalizeToken(s string) string {
	return lowerString(norm.NFKC.String(strings.TrimSpace(s)))
}

// SplitPhrase normalizes a user-entered phrase into lowercase tokens.
func SplitPhrase(phrase string) []string {
	fields := strings.Fields(norm.NFKC.String(phrase))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, lowerString(f))
	}
	return out
}
