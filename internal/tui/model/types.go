package model

import (
	"context"
	"time"

	"podctl/internal/hub"
	"podctl/internal/podapi"
	"podctl/internal/podview"
	"podctl/pkg/logging"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// AppMode defines the current operational mode of the TUI.
type AppMode int

const (
	ModeLoading AppMode = iota
	ModeDashboard
	ModeCreateInput
	ModeConfirmDelete
	ModeLogOverlay
	ModeActivityOverlay
	ModeHelpOverlay
)

// MessageType is the severity of a status bar message.
type MessageType int

const (
	StatusBarInfo MessageType = iota
	StatusBarSuccess
	StatusBarError
	StatusBarWarning
)

const (
	MaxActivityLogLines = 1000

	// eventBufferSize bounds messages queued from hub callbacks.
	eventBufferSize = 256
)

// Backend is the slice of the application the dashboard drives.
type Backend interface {
	LoadPods(ctx context.Context) ([]podview.Pod, error)
	CreatePod(ctx context.Context, req podapi.CreatePodRequest) (*podview.Pod, error)
	DeletePod(ctx context.Context, name string) error
	OpenLogs(ctx context.Context, pod string) (*podview.LogView, error)
	CloseLogs(ctx context.Context, lv *podview.LogView) error
}

// TUIConfig carries everything the dashboard needs from the application.
type TUIConfig struct {
	Context      context.Context
	Backend      Backend
	View         *podview.View
	Connectivity *hub.ConnectivitySubscription
	LogChannel   <-chan logging.LogEntry
	DebugMode    bool
}

// Model is the dashboard state. Rendering lives in package view, key and
// message handling in package controller.
type Model struct {
	ctx          context.Context
	Backend      Backend
	View         *podview.View
	Connectivity *hub.ConnectivitySubscription
	LogChannel   <-chan logging.LogEntry

	// Events carries messages produced on hub goroutines (view changes,
	// streamed log lines) into the bubbletea loop.
	Events chan tea.Msg

	CurrentAppMode AppMode
	DebugMode      bool
	Width          int
	Height         int

	Keys    KeyMap
	Help    help.Model
	Spinner spinner.Model

	Pods     []podview.Pod
	PodTable table.Model
	Online   bool
	LastErr  error

	CreateInput textinput.Model
	DeleteName  string

	LogView     *podview.LogView
	LogViewport viewport.Model

	ActivityLog      []string
	ActivityViewport viewport.Model
	ActivityLogDirty bool

	StatusBarMessage     string
	StatusBarMessageType MessageType
	StatusBarClearCancel chan struct{}
}

// Context is the context dashboard commands run under.
func (m *Model) Context() context.Context { return m.ctx }

// SelectedPod returns the pod under the table cursor.
func (m *Model) SelectedPod() (podview.Pod, bool) {
	i := m.PodTable.Cursor()
	if i < 0 || i >= len(m.Pods) {
		return podview.Pod{}, false
	}
	return m.Pods[i], true
}

// SetStatusMessage shows message in the status bar and clears it after
// clearAfter unless a newer message replaced it.
func (m *Model) SetStatusMessage(message string, msgType MessageType, clearAfter time.Duration) tea.Cmd {
	m.StatusBarMessage = message
	m.StatusBarMessageType = msgType

	if m.StatusBarClearCancel != nil {
		close(m.StatusBarClearCancel)
	}

	m.StatusBarClearCancel = make(chan struct{})
	captured := m.StatusBarClearCancel

	return tea.Tick(clearAfter, func(t time.Time) tea.Msg {
		select {
		case <-captured:
			return nil
		default:
			return ClearStatusBarMsg{}
		}
	})
}

// AddActivityLine appends a line to the activity log, keeping at most
// MaxActivityLogLines.
func (m *Model) AddActivityLine(line string) {
	m.ActivityLog = append(m.ActivityLog, line)
	if len(m.ActivityLog) > MaxActivityLogLines {
		m.ActivityLog = m.ActivityLog[len(m.ActivityLog)-MaxActivityLogLines:]
	}
	m.ActivityLogDirty = true
}

// Post queues msg for the bubbletea loop without blocking. Used from hub
// callbacks.
func (m *Model) Post(msg tea.Msg) {
	select {
	case m.Events <- msg:
	default:
		logging.Debug("TUI", "event queue full, dropping %T", msg)
	}
}
