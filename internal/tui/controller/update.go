package controller

import (
	"fmt"
	"time"

	"podctl/internal/tui/model"
	"podctl/internal/tui/view"
	"podctl/pkg/logging"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const statusTTL = 3 * time.Second

// Update routes msg to the handler for its type.
func Update(msg tea.Msg, m *model.Model) (*model.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return handleKeyMsg(m, msg)

	case spinner.TickMsg:
		if m.CurrentAppMode != model.ModeLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case model.PodsLoadedMsg:
		if m.CurrentAppMode == model.ModeLoading {
			m.CurrentAppMode = model.ModeDashboard
		}
		if msg.Err != nil {
			m.LastErr = msg.Err
			logging.Error("TUI", msg.Err, "Failed to load pods")
			return m, m.SetStatusMessage("Failed to load pods", model.StatusBarError, statusTTL)
		}
		m.LastErr = nil
		m.Pods = msg.Pods
		refreshRows(m)
		return m, nil

	case model.PodsChangedMsg:
		if m.View != nil {
			m.Pods = m.View.Pods()
			refreshRows(m)
		}
		return m, m.ListenEventsCmd()

	case model.LogLineMsg:
		if m.LogView != nil && m.LogView.Pod() == msg.Pod {
			refreshLogViewport(m)
		}
		return m, m.ListenEventsCmd()

	case model.ConnectivityMsg:
		m.Online = msg.Online
		return m, m.ListenConnectivityCmd()

	case model.NewLogEntryMsg:
		m.AddActivityLine(msg.Entry.String())
		if m.CurrentAppMode == model.ModeActivityOverlay {
			refreshActivityViewport(m)
		}
		return m, m.ListenLogsCmd()

	case model.PodCreatedMsg:
		if msg.Err != nil {
			return m, m.SetStatusMessage("Create failed: "+msg.Err.Error(), model.StatusBarError, statusTTL)
		}
		if m.View != nil {
			m.Pods = m.View.Pods()
			refreshRows(m)
		}
		return m, m.SetStatusMessage(fmt.Sprintf("Created %s", msg.Pod.Name), model.StatusBarSuccess, statusTTL)

	case model.PodDeletedMsg:
		if m.View != nil {
			m.Pods = m.View.Pods()
			refreshRows(m)
		}
		if msg.Err != nil {
			return m, m.SetStatusMessage("Delete "+msg.Name+": "+msg.Err.Error(), model.StatusBarError, statusTTL)
		}
		return m, m.SetStatusMessage("Deleted "+msg.Name, model.StatusBarSuccess, statusTTL)

	case model.LogsOpenedMsg:
		if msg.View == nil {
			m.CurrentAppMode = model.ModeDashboard
			return m, m.SetStatusMessage("Logs unavailable: "+msg.Err.Error(), model.StatusBarError, statusTTL)
		}
		if m.CurrentAppMode != model.ModeLogOverlay {
			// closed before the history arrived
			return m, m.CloseLogsCmdFor(msg.View)
		}
		m.LogView = msg.View
		refreshLogViewport(m)
		if msg.Err != nil {
			return m, m.SetStatusMessage("Live stream unavailable: "+msg.Err.Error(), model.StatusBarWarning, statusTTL)
		}
		return m, nil

	case model.LogsClosedMsg:
		if msg.Err != nil {
			logging.Warn("TUI", "stopping log stream for %s: %v", msg.Pod, msg.Err)
		}
		return m, nil

	case model.ClearStatusBarMsg:
		m.StatusBarMessage = ""
		return m, nil
	}
	return m, nil
}

func refreshRows(m *model.Model) {
	m.PodTable.SetRows(view.PodRows(m.Pods, m.PodTable.Columns()))
	if n := len(m.Pods); n > 0 && m.PodTable.Cursor() >= n {
		m.PodTable.SetCursor(n - 1)
	}
}

func refreshLogViewport(m *model.Model) {
	atBottom := m.LogViewport.AtBottom()
	m.LogViewport.SetContent(view.LogContent(m.LogView.Lines(), m.LogViewport.Width))
	if atBottom {
		m.LogViewport.GotoBottom()
	}
}

func refreshActivityViewport(m *model.Model) {
	m.ActivityViewport.SetContent(view.LogContent(m.ActivityLog, m.ActivityViewport.Width))
	m.ActivityViewport.GotoBottom()
	m.ActivityLogDirty = false
}
