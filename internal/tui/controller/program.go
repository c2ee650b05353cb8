package controller

import (
	"podctl/internal/tui/model"

	tea "github.com/charmbracelet/bubbletea"
)

// NewProgram creates the dashboard program in the alternate screen.
func NewProgram(cfg model.TUIConfig) *tea.Program {
	m := model.InitializeModel(cfg)
	return tea.NewProgram(NewAppModel(m), tea.WithAltScreen())
}
