package controller

import (
	"strings"

	"podctl/internal/tui/model"
	"podctl/pkg/logging"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// handleKeyMsg dispatches a key press according to the current mode.
func handleKeyMsg(m *model.Model, keyMsg tea.KeyMsg) (*model.Model, tea.Cmd) {
	if keyMsg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.CurrentAppMode {
	case model.ModeCreateInput:
		return handleCreateInput(m, keyMsg)
	case model.ModeConfirmDelete:
		return handleConfirmDelete(m, keyMsg)
	case model.ModeLogOverlay:
		return handleLogOverlay(m, keyMsg)
	case model.ModeActivityOverlay:
		if key.Matches(keyMsg, m.Keys.Esc, m.Keys.Activity) {
			m.CurrentAppMode = model.ModeDashboard
			return m, nil
		}
		var cmd tea.Cmd
		m.ActivityViewport, cmd = m.ActivityViewport.Update(keyMsg)
		return m, cmd
	case model.ModeHelpOverlay:
		if key.Matches(keyMsg, m.Keys.Esc, m.Keys.Help) {
			m.CurrentAppMode = model.ModeDashboard
		}
		return m, nil
	}
	return handleKeyMsgGlobal(m, keyMsg)
}

// handleKeyMsgGlobal handles keys on the pod table.
func handleKeyMsgGlobal(m *model.Model, keyMsg tea.KeyMsg) (*model.Model, tea.Cmd) {
	switch {
	case key.Matches(keyMsg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(keyMsg, m.Keys.Help):
		m.CurrentAppMode = model.ModeHelpOverlay
		return m, nil

	case key.Matches(keyMsg, m.Keys.Activity):
		m.CurrentAppMode = model.ModeActivityOverlay
		refreshActivityViewport(m)
		return m, nil

	case key.Matches(keyMsg, m.Keys.Refresh):
		return m, tea.Batch(
			m.LoadPodsCmd(),
			m.SetStatusMessage("Reloading pods...", model.StatusBarInfo, statusTTL),
		)

	case key.Matches(keyMsg, m.Keys.New):
		m.CurrentAppMode = model.ModeCreateInput
		m.CreateInput.Reset()
		m.CreateInput.Focus()
		return m, textinput.Blink
	}

	pod, ok := m.SelectedPod()
	switch {
	case key.Matches(keyMsg, m.Keys.Enter):
		if !ok {
			return m, nil
		}
		m.CurrentAppMode = model.ModeLogOverlay
		m.LogView = nil
		m.LogViewport.SetContent("Loading logs for " + pod.Name + "...")
		return m, m.OpenLogsCmd(pod.Name)

	case key.Matches(keyMsg, m.Keys.Delete):
		if !ok {
			return m, nil
		}
		m.CurrentAppMode = model.ModeConfirmDelete
		m.DeleteName = pod.Name
		return m, nil

	case key.Matches(keyMsg, m.Keys.CopyURL):
		if !ok {
			return m, nil
		}
		url := pod.URL()
		if url == "" {
			return m, m.SetStatusMessage(pod.Name+" has no URL yet", model.StatusBarWarning, statusTTL)
		}
		if err := writeClipboard(url); err != nil {
			logging.Error("TUI", err, "Failed to copy URL")
			return m, m.SetStatusMessage("Copy URL failed", model.StatusBarError, statusTTL)
		}
		return m, m.SetStatusMessage("Copied "+url, model.StatusBarSuccess, statusTTL)
	}

	var cmd tea.Cmd
	m.PodTable, cmd = m.PodTable.Update(keyMsg)
	return m, cmd
}

func handleCreateInput(m *model.Model, keyMsg tea.KeyMsg) (*model.Model, tea.Cmd) {
	switch keyMsg.Type {
	case tea.KeyEsc:
		m.CreateInput.Blur()
		m.CurrentAppMode = model.ModeDashboard
		return m, nil
	case tea.KeyEnter:
		input := m.CreateInput.Value()
		m.CreateInput.Blur()
		m.CreateInput.Reset()
		m.CurrentAppMode = model.ModeDashboard
		if strings.TrimSpace(input) == "" {
			return m, nil
		}
		return m, tea.Batch(
			m.CreatePodCmd(input),
			m.SetStatusMessage("Creating pod...", model.StatusBarInfo, statusTTL),
		)
	}
	var cmd tea.Cmd
	m.CreateInput, cmd = m.CreateInput.Update(keyMsg)
	return m, cmd
}

func handleConfirmDelete(m *model.Model, keyMsg tea.KeyMsg) (*model.Model, tea.Cmd) {
	name := m.DeleteName
	m.CurrentAppMode = model.ModeDashboard
	m.DeleteName = ""
	switch keyMsg.String() {
	case "y", "Y":
		return m, tea.Batch(
			m.DeletePodCmd(name),
			m.SetStatusMessage("Deleting "+name+"...", model.StatusBarInfo, statusTTL),
		)
	}
	return m, nil
}

func handleLogOverlay(m *model.Model, keyMsg tea.KeyMsg) (*model.Model, tea.Cmd) {
	switch {
	case key.Matches(keyMsg, m.Keys.Esc):
		cmd := m.CloseLogsCmd()
		m.LogView = nil
		m.CurrentAppMode = model.ModeDashboard
		return m, cmd
	case key.Matches(keyMsg, m.Keys.CopyLogs):
		if m.LogView == nil {
			return m, nil
		}
		if err := writeClipboard(strings.Join(m.LogView.Lines(), "\n")); err != nil {
			logging.Error("TUI", err, "Failed to copy logs")
			return m, m.SetStatusMessage("Copy logs failed", model.StatusBarError, statusTTL)
		}
		return m, m.SetStatusMessage("Logs copied to clipboard", model.StatusBarSuccess, statusTTL)
	}
	var cmd tea.Cmd
	m.LogViewport, cmd = m.LogViewport.Update(keyMsg)
	return m, cmd
}
