package textutil

import (
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	spanishMu       sync.Mutex
	spanishCollator = collate.New(language.Spanish, collate.IgnoreCase)
)

// CompareSpanish orders two strings using Spanish collation rules, ignoring
// case. It returns -1, 0, or 1 in the manner of strings.Compare.
func CompareSpanish(a, b string) int {
	spanishMu.Lock()
	defer spanishMu.Unlock()
	return spanishCollator.CompareString(a, b)
}

// SortSpanish sorts values in place using Spanish collation rules.
func SortSpanish(values []string) {
	sort.Slice(values, func(i, j int) bool {
		return CompareSpanish(values[i], values[j]) < 0
	})
}
