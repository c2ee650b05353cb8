// Package cli renders podctl's command-line tables.
package cli

import (
	"io"
	"os"

	"podctl/internal/podview"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"
	corev1 "k8s.io/api/core/v1"
)

// Placeholder fills cells that have no value.
const Placeholder = "-"

// Table is a rounded table written to one output. Colours are only used when
// that output is a terminal.
type Table struct {
	w     table.Writer
	out   io.Writer
	color bool
	rows  int
}

// NewTable starts a table with the given column headers.
func NewTable(out io.Writer, headers ...string) *Table {
	t := &Table{w: table.NewWriter(), out: out, color: IsTerminal(out)}
	t.w.SetOutputMirror(out)
	style := table.StyleRounded
	if t.color {
		style.Color.Header = text.Colors{text.FgHiCyan}
	}
	t.w.SetStyle(style)

	row := make(table.Row, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	t.w.AppendHeader(row)
	return t
}

// Append adds one row. Empty string cells are shown as Placeholder.
func (t *Table) Append(cells ...any) {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		if s, ok := c.(string); ok && s == "" {
			c = t.paint(text.FgHiBlack, Placeholder)
		}
		row[i] = c
	}
	t.w.AppendRow(row)
	t.rows++
}

// Status colours a pod status by its phase.
func (t *Table) Status(status string) string {
	if status == "" {
		return ""
	}
	switch podview.PhaseOf(status) {
	case corev1.PodRunning:
		return t.paint(text.FgGreen, status)
	case corev1.PodPending:
		return t.paint(text.FgYellow, status)
	case corev1.PodFailed:
		return t.paint(text.FgRed, status)
	case corev1.PodSucceeded:
		return t.paint(text.FgCyan, status)
	default:
		return status
	}
}

// Render writes the table, or empty when no row was added.
func (t *Table) Render(empty string) {
	if t.rows == 0 && empty != "" {
		_, _ = io.WriteString(t.out, t.paint(text.FgYellow, empty)+"\n")
		return
	}
	t.w.Render()
}

func (t *Table) paint(c text.Color, s string) string {
	if !t.color {
		return s
	}
	return c.Sprint(s)
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
