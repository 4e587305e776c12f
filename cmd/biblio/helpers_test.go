package main

import (
	"testing"
	"time"

	"biblioaccess/internal/api"
)

func TestBuildTaskRowsSortsWithSpanishCollation(t *testing.T) {
	items := []api.Task{
		{ID: 1, Name: "zapato", Status: "Pendiente"},
		{ID: 2, Name: "Ángel", Status: "Pendiente"},
		{ID: 3, Name: "mesa", Status: "Pendiente"},
	}

	rows := buildTaskRows(items, false)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	got := []string{rows[0][1], rows[1][1], rows[2][1]}
	want := []string{"Ángel", "mesa", "zapato"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row order %v, want %v", got, want)
		}
	}
}

func TestTruncateKeepsShortNamesIntact(t *testing.T) {
	if got := truncate("corto", 10); got != "corto" {
		t.Fatalf("short value should pass through, got %q", got)
	}
	long := "una tarea con un nombre demasiado largo para la tabla"
	got := truncate(long, 20)
	if len([]rune(got)) != 20 {
		t.Fatalf("truncated value should be 20 runes, got %d (%q)", len([]rune(got)), got)
	}
	if got[len(got)-3:] != "..." {
		t.Fatalf("truncated value should end in ellipsis, got %q", got)
	}
}

func TestFormatDue(t *testing.T) {
	if got := formatDue(time.Time{}); got != "-" {
		t.Fatalf("zero due date should render as dash, got %q", got)
	}
	due := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	if got := formatDue(due); got != "2026-09-15" {
		t.Fatalf("unexpected due rendering %q", got)
	}
}

func TestStatusBadgeWithoutColor(t *testing.T) {
	if got := statusBadge("en proceso", false); got != "EnProceso" {
		t.Fatalf("lenient spelling should canonicalize, got %q", got)
	}
	if got := statusBadge("desconocido", false); got != "desconocido" {
		t.Fatalf("unknown status should pass through, got %q", got)
	}
}
