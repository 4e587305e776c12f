package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

func foldTransformer() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Fold strips diacritic marks from text ("Revisión" becomes "Revision").
// Input is returned unchanged when the transform fails.
func Fold(value string) string {
	folded, _, err := transform.String(foldTransformer(), value)
	if err != nil {
		return value
	}
	return folded
}

// CanonicalKey produces a lookup key for enum-like labels: diacritics folded,
// lowercased, with whitespace, hyphens, and underscores removed. "En Revisión",
// "en revision", and "EN_REVISION" all map to "enrevision".
func CanonicalKey(value string) string {
	folded := strings.ToLower(Fold(value))
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CountWords counts whitespace-delimited words in text. Runs of whitespace
// count as a single separator and empty segments are ignored.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
