package conversationsearch

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MinimumSearchTextLength is the shortest normalized query that is searched.
const MinimumSearchTextLength = 2

// NormalizeSearchText folds raw search bar text into the form handed to the
// full-text searcher.
func NormalizeSearchText(raw string) string {
	text := norm.NFKC.String(strings.TrimSpace(raw))
	text = strings.Join(strings.Fields(text), " ")
	return cases.Fold().String(text)
}

func searchable(text string) bool {
	return utf8.RuneCountInString(text) >= MinimumSearchTextLength
}
