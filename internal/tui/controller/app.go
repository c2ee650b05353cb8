package controller

import (
	"podctl/internal/tui/model"
	"podctl/internal/tui/view"

	tea "github.com/charmbracelet/bubbletea"
)

// AppModel wraps the model to handle updates and views
type AppModel struct {
	model *model.Model
}

// NewAppModel creates a new app wrapper
func NewAppModel(m *model.Model) AppModel {
	return AppModel{model: m}
}

// Init implements tea.Model
func (a AppModel) Init() tea.Cmd {
	return a.model.Init()
}

// Update implements tea.Model
func (a AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		resize(a.model, msg.Width, msg.Height)
		return a, nil
	}

	updatedModel, cmd := Update(msg, a.model)
	a.model = updatedModel
	return a, cmd
}

// View implements tea.Model
func (a AppModel) View() string {
	return view.Render(a.model)
}

func resize(m *model.Model, width, height int) {
	m.Width = width
	m.Height = height
	m.Help.Width = width

	m.PodTable.SetColumns(view.ResizeColumns(m.PodTable.Columns(), width))
	m.PodTable.SetHeight(max(3, height-14))
	refreshRows(m)

	vw, vh := max(20, width-6), max(3, height-8)
	m.LogViewport.Width, m.LogViewport.Height = vw, vh
	m.ActivityViewport.Width, m.ActivityViewport.Height = vw, vh
}
