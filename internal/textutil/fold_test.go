package textutil_test

import (
	"testing"

	"biblioaccess/internal/textutil"
)

func TestFoldStripsDiacritics(t *testing.T) {
	cases := map[string]string{
		"Revisión":   "Revision",
		"Bibliografía": "Bibliografia",
		"plain":      "plain",
		"":           "",
	}
	for input, want := range cases {
		if got := textutil.Fold(input); got != want {
			t.Fatalf("Fold(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestCanonicalKeyNormalizesVariants(t *testing.T) {
	variants := []string{"EnRevisión", "en revision", "EN_REVISION", " en-revisión "}
	for _, variant := range variants {
		if got := textutil.CanonicalKey(variant); got != "enrevision" {
			t.Fatalf("CanonicalKey(%q) = %q, want %q", variant, got, "enrevision")
		}
	}
}

func TestCountWords(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"uno", 1},
		{"a  b   c", 3},
		{"línea uno\nlínea dos", 4},
		{"\ttab\tseparated\t", 2},
	}
	for _, tc := range cases {
		if got := textutil.CountWords(tc.text); got != tc.want {
			t.Fatalf("CountWords(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestSortSpanishOrdersAccentedNames(t *testing.T) {
	values := []string{"Úrsula", "Ana", "ángel", "Beatriz"}
	textutil.SortSpanish(values)
	want := []string{"Ana", "ángel", "Beatriz", "Úrsula"}
	for i, v := range values {
		if v != want[i] {
			t.Fatalf("unexpected order %v, want %v", values, want)
		}
	}
}
