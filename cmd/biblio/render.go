package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"biblioaccess/internal/tasks"
)

var statusColors = map[tasks.Status]*color.Color{
	tasks.StatusPendiente:  color.New(color.FgYellow),
	tasks.StatusEnProceso:  color.New(color.FgBlue),
	tasks.StatusEnRevision: color.New(color.FgMagenta),
	tasks.StatusCompletada: color.New(color.FgGreen),
	tasks.StatusDenegada:   color.New(color.FgRed),
}

// statusBadge renders a status name, colorized when the destination is a
// terminal.
func statusBadge(value string, colorize bool) string {
	status, ok := tasks.ParseStatus(value)
	if !ok {
		return value
	}
	c, known := statusColors[status]
	if !colorize || !known {
		return string(status)
	}
	return c.Sprint(string(status))
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
