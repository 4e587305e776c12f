package main

import (
	"sort"
	"strconv"
	"time"

	"biblioaccess/internal/api"
	"biblioaccess/internal/textutil"
)

const taskNameColumnWidth = 40

// buildTaskRows renders tasks into table rows, ordered by name using Spanish
// collation so accented names sort where a librarian expects them.
func buildTaskRows(items []api.Task, colorize bool) [][]string {
	sorted := make([]api.Task, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return textutil.CompareSpanish(sorted[i].Name, sorted[j].Name) < 0
	})

	rows := make([][]string, 0, len(sorted))
	for _, task := range sorted {
		rows = append(rows, []string{
			formatID(task.ID),
			truncate(task.Name, taskNameColumnWidth),
			statusBadge(task.Status, colorize),
			formatDue(task.DueDate),
			task.FileName,
		})
	}
	return rows
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func formatDue(due time.Time) string {
	if due.IsZero() {
		return "-"
	}
	return due.Format("2006-01-02")
}

func truncate(value string, limit int) string {
	if limit <= 3 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-3]) + "..."
}
