package model

import (
	"podctl/internal/podview"
	"podctl/pkg/logging"
)

type PodsLoadedMsg struct {
	Pods []podview.Pod
	Err  error
}

// PodsChangedMsg is posted by the pod view whenever a pod's record changes.
type PodsChangedMsg struct{}

type ConnectivityMsg struct {
	Online bool
}

type PodCreatedMsg struct {
	Pod *podview.Pod
	Err error
}

type PodDeletedMsg struct {
	Name string
	Err  error
}

type LogsOpenedMsg struct {
	View *podview.LogView
	Err  error
}

// LogLineMsg is posted for each line streamed into the open log view.
type LogLineMsg struct {
	Pod   string
	Entry podview.LogEntry
}

type LogsClosedMsg struct {
	Pod string
	Err error
}

type NewLogEntryMsg struct {
	Entry logging.LogEntry
}

type ClearStatusBarMsg struct{}
