package view

import (
	"testing"

	"podctl/internal/podview"
	"podctl/internal/tui/model"

	"github.com/charmbracelet/bubbles/table"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPodRows(t *testing.T) {
	port := 30001
	pods := []podview.Pod{
		{Name: "nb", Status: "Running", Image: "jupyter/minimal-notebook:latest", NodePort: &port},
		{Name: "笔记本-笔记本-笔记本", Status: "CrashLoopBackOff", Image: "x"},
	}
	cols := []table.Column{{Width: 10}, {Width: 20}, {Width: 12}, {Width: 24}}

	rows := PodRows(pods, cols)
	require.Len(t, rows, 2)
	assert.Equal(t, "● Running", rows[0][1])
	assert.Equal(t, "jupyter/min…", rows[0][2])
	assert.Equal(t, "http://localhost:30001", rows[0][3])

	assert.LessOrEqual(t, runewidth.StringWidth(rows[1][0]), 10)
	assert.Equal(t, "✗ CrashLoopBackOff", rows[1][1])
	assert.Equal(t, "-", rows[1][3])
}

func TestResizeColumns(t *testing.T) {
	cols := ResizeColumns(model.PodColumns(), 140)
	assert.Equal(t, 140-24-20-24-8-4, cols[2].Width)

	narrow := ResizeColumns(model.PodColumns(), 40)
	assert.Equal(t, 12, narrow[2].Width)
}

func TestLogContent(t *testing.T) {
	assert.Equal(t, "No logs yet.", LogContent(nil, 80))
	assert.Equal(t, "a\nb", LogContent([]string{"a", "b"}, 0))
}

func TestRender_Modes(t *testing.T) {
	m := model.InitializeModel(model.TUIConfig{})
	assert.Equal(t, "Initializing...", Render(m))

	m.Width, m.Height = 100, 30
	assert.Contains(t, Render(m), "loading pods")

	m.CurrentAppMode = model.ModeDashboard
	assert.Contains(t, Render(m), "No pods")
	assert.Contains(t, Render(m), "offline")

	m.CurrentAppMode = model.ModeConfirmDelete
	m.DeleteName = "web-1"
	assert.Contains(t, Render(m), "Delete pod web-1? (y/n)")

	m.CurrentAppMode = model.ModeCreateInput
	assert.Contains(t, Render(m), "jupyter-minimal")

	m.CurrentAppMode = model.ModeHelpOverlay
	assert.Contains(t, Render(m), "new pod")
}
