package model

import (
	"testing"

	"podctl/internal/podview"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCreateInput(t *testing.T) {
	req, err := ParseCreateInput("  web-1  ")
	require.NoError(t, err)
	assert.Equal(t, "web-1", req.Name)
	assert.Equal(t, "ubuntu:22.04", req.Image)

	req, err = ParseCreateInput("nb jupyter-pytorch")
	require.NoError(t, err)
	assert.Equal(t, "jupyter/pytorch-notebook:latest", req.Image)
	assert.Equal(t, 8888, req.JupyterPort)

	_, err = ParseCreateInput("   ")
	assert.Error(t, err)

	_, err = ParseCreateInput("x centos")
	assert.ErrorContains(t, err, `unknown template "centos"`)
}

func TestModel_PostNeverBlocks(t *testing.T) {
	m := InitializeModel(TUIConfig{})
	for i := 0; i < eventBufferSize+10; i++ {
		m.Post(PodsChangedMsg{})
	}
	assert.Len(t, m.Events, eventBufferSize)
}

func TestModel_ActivityLogIsBounded(t *testing.T) {
	m := InitializeModel(TUIConfig{})
	for i := 0; i < MaxActivityLogLines+5; i++ {
		m.AddActivityLine("line")
	}
	assert.Len(t, m.ActivityLog, MaxActivityLogLines)
	assert.True(t, m.ActivityLogDirty)
}

func TestModel_SelectedPod(t *testing.T) {
	m := InitializeModel(TUIConfig{})
	_, ok := m.SelectedPod()
	assert.False(t, ok)

	m.Pods = []podview.Pod{{Name: "a"}, {Name: "b"}}
	p, ok := m.SelectedPod()
	require.True(t, ok)
	assert.Equal(t, "a", p.Name)
}

func TestModel_StatusMessageReplaced(t *testing.T) {
	m := InitializeModel(TUIConfig{})
	m.SetStatusMessage("first", StatusBarInfo, 0)
	first := m.StatusBarClearCancel
	m.SetStatusMessage("second", StatusBarError, 0)

	assert.Equal(t, "second", m.StatusBarMessage)
	assert.Equal(t, StatusBarError, m.StatusBarMessageType)
	_, open := <-first
	assert.False(t, open, "the earlier clear is cancelled")
}
