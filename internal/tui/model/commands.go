package model

import (
	"errors"
	"strings"

	"podctl/internal/podapi"
	"podctl/internal/podview"

	tea "github.com/charmbracelet/bubbletea"
)

// LoadPodsCmd fetches the pod list and subscribes to status updates.
func (m *Model) LoadPodsCmd() tea.Cmd {
	ctx, backend := m.ctx, m.Backend
	return func() tea.Msg {
		pods, err := backend.LoadPods(ctx)
		return PodsLoadedMsg{Pods: pods, Err: err}
	}
}

// CreatePodCmd creates a pod from a "name [template]" line.
func (m *Model) CreatePodCmd(input string) tea.Cmd {
	ctx, backend := m.ctx, m.Backend
	return func() tea.Msg {
		req, err := ParseCreateInput(input)
		if err != nil {
			return PodCreatedMsg{Err: err}
		}
		pod, err := backend.CreatePod(ctx, req)
		return PodCreatedMsg{Pod: pod, Err: err}
	}
}

// ParseCreateInput turns "name [template]" into a create request. The
// template defaults to podapi.DefaultTemplate.
func ParseCreateInput(input string) (podapi.CreatePodRequest, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return podapi.CreatePodRequest{}, errors.New("pod name is required")
	}
	id := podapi.DefaultTemplate
	if len(fields) > 1 {
		id = fields[1]
	}
	tpl, err := podapi.LookupTemplate(id)
	if err != nil {
		return podapi.CreatePodRequest{}, err
	}
	return tpl.Request(fields[0]), nil
}

// DeletePodCmd deletes a pod.
func (m *Model) DeletePodCmd(name string) tea.Cmd {
	ctx, backend := m.ctx, m.Backend
	return func() tea.Msg {
		return PodDeletedMsg{Name: name, Err: backend.DeletePod(ctx, name)}
	}
}

// OpenLogsCmd loads history for pod and starts streaming. Streamed lines
// are posted to the event queue as LogLineMsg.
func (m *Model) OpenLogsCmd(pod string) tea.Cmd {
	ctx, backend := m.ctx, m.Backend
	return func() tea.Msg {
		lv, err := backend.OpenLogs(ctx, pod)
		if lv != nil {
			lv.OnAppend(func(e podview.LogEntry) {
				m.Post(LogLineMsg{Pod: pod, Entry: e})
			})
		}
		return LogsOpenedMsg{View: lv, Err: err}
	}
}

// CloseLogsCmd stops streaming for the open log view.
func (m *Model) CloseLogsCmd() tea.Cmd {
	if m.LogView == nil {
		return nil
	}
	return m.CloseLogsCmdFor(m.LogView)
}

// CloseLogsCmdFor stops streaming for lv.
func (m *Model) CloseLogsCmdFor(lv *podview.LogView) tea.Cmd {
	ctx, backend := m.ctx, m.Backend
	return func() tea.Msg {
		return LogsClosedMsg{Pod: lv.Pod(), Err: backend.CloseLogs(ctx, lv)}
	}
}

// ListenEventsCmd waits for the next message posted from a hub callback.
func (m *Model) ListenEventsCmd() tea.Cmd {
	events := m.Events
	return func() tea.Msg {
		return <-events
	}
}

// ListenConnectivityCmd waits for the next connectivity change.
func (m *Model) ListenConnectivityCmd() tea.Cmd {
	if m.Connectivity == nil {
		return nil
	}
	c := m.Connectivity.C
	return func() tea.Msg {
		online, ok := <-c
		if !ok {
			return nil
		}
		return ConnectivityMsg{Online: online}
	}
}

// ListenLogsCmd waits for the next application log entry.
func (m *Model) ListenLogsCmd() tea.Cmd {
	if m.LogChannel == nil {
		return nil
	}
	c := m.LogChannel
	return func() tea.Msg {
		entry, ok := <-c
		if !ok {
			return nil
		}
		return NewLogEntryMsg{Entry: entry}
	}
}
