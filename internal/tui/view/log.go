package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// LogContent renders log lines for a viewport, wrapping at width.
func LogContent(lines []string, width int) string {
	if len(lines) == 0 {
		return "No logs yet."
	}
	content := strings.Join(lines, "\n")
	if width <= 0 {
		return content
	}
	return lipgloss.NewStyle().Width(width).Render(content)
}
