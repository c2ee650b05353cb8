package model

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// PodColumns are the pod table columns. Widths are adjusted on resize.
func PodColumns() []table.Column {
	return []table.Column{
		{Title: "NAME", Width: 24},
		{Title: "STATUS", Width: 18},
		{Title: "IMAGE", Width: 32},
		{Title: "URL", Width: 24},
	}
}

// InitializeModel builds the dashboard model from cfg.
func InitializeModel(cfg TUIConfig) *Model {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	ti := textinput.New()
	ti.Placeholder = "name [template]"
	ti.CharLimit = 96
	ti.Width = 48

	t := table.New(
		table.WithColumns(PodColumns()),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	return &Model{
		ctx:              ctx,
		Backend:          cfg.Backend,
		View:             cfg.View,
		Connectivity:     cfg.Connectivity,
		LogChannel:       cfg.LogChannel,
		Events:           make(chan tea.Msg, eventBufferSize),
		CurrentAppMode:   ModeLoading,
		DebugMode:        cfg.DebugMode,
		Keys:             DefaultKeyMap(),
		Help:             help.New(),
		Spinner:          s,
		PodTable:         t,
		CreateInput:      ti,
		LogViewport:      viewport.New(80, 20),
		ActivityViewport: viewport.New(80, 20),
	}
}

// Init implements tea.Model and starts the background listeners.
func (m *Model) Init() tea.Cmd {
	if m.View != nil {
		m.View.OnChange(func(string) { m.Post(PodsChangedMsg{}) })
	}
	return tea.Batch(
		m.Spinner.Tick,
		m.LoadPodsCmd(),
		m.ListenEventsCmd(),
		m.ListenConnectivityCmd(),
		m.ListenLogsCmd(),
	)
}
