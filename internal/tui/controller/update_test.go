package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"podctl/internal/podapi"
	"podctl/internal/podview"
	"podctl/internal/router"
	"podctl/internal/tui/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	view *podview.View

	mu      sync.Mutex
	created []podapi.CreatePodRequest
	deleted []string
	opened  []string
	closed  []string
	loadErr error
	logsErr error
	initial []*podview.Pod
}

func newFakeBackend(pods ...*podview.Pod) *fakeBackend {
	return &fakeBackend{view: podview.New(100), initial: pods}
}

func (b *fakeBackend) LoadPods(ctx context.Context) ([]podview.Pod, error) {
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	b.view.Track(b.initial)
	return b.view.Pods(), nil
}

func (b *fakeBackend) CreatePod(ctx context.Context, req podapi.CreatePodRequest) (*podview.Pod, error) {
	b.mu.Lock()
	b.created = append(b.created, req)
	b.mu.Unlock()
	p := &podview.Pod{Name: req.Name, Image: req.Image, Status: "Pending"}
	b.view.Add(p)
	return p, nil
}

func (b *fakeBackend) DeletePod(ctx context.Context, name string) error {
	b.mu.Lock()
	b.deleted = append(b.deleted, name)
	b.mu.Unlock()
	b.view.Remove(name)
	return nil
}

func (b *fakeBackend) OpenLogs(ctx context.Context, pod string) (*podview.LogView, error) {
	b.mu.Lock()
	b.opened = append(b.opened, pod)
	b.mu.Unlock()
	return b.view.OpenLogView(pod, []string{"history 1", "history 2"}), b.logsErr
}

func (b *fakeBackend) CloseLogs(ctx context.Context, lv *podview.LogView) error {
	b.mu.Lock()
	b.closed = append(b.closed, lv.Pod())
	b.mu.Unlock()
	lv.Close()
	return nil
}

func newTestModel(t *testing.T, b *fakeBackend) *model.Model {
	t.Helper()
	m := model.InitializeModel(model.TUIConfig{Backend: b, View: b.view})
	resize(m, 120, 40)
	return m
}

// collect runs cmd and returns the messages produced within a short window.
// Status bar ticks never fire in that window.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	out := make(chan tea.Msg, 16)
	var run func(c tea.Cmd)
	run = func(c tea.Cmd) {
		go func() {
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, sub := range batch {
					if sub != nil {
						run(sub)
					}
				}
				return
			}
			if msg != nil {
				out <- msg
			}
		}()
	}
	run(cmd)

	var msgs []tea.Msg
	timeout := time.After(200 * time.Millisecond)
	for {
		select {
		case msg := <-out:
			msgs = append(msgs, msg)
		case <-timeout:
			return msgs
		}
	}
}

func findMsg[T tea.Msg](t *testing.T, msgs []tea.Msg) T {
	t.Helper()
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v
		}
	}
	var zero T
	t.Fatalf("no %T among %v", zero, msgs)
	return zero
}

func stubClipboard(t *testing.T, fn func(string) error) {
	t.Helper()
	orig := writeClipboard
	writeClipboard = fn
	t.Cleanup(func() { writeClipboard = orig })
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T, m *model.Model, b *fakeBackend) *model.Model {
	t.Helper()
	pods, err := b.LoadPods(context.Background())
	require.NoError(t, err)
	m, _ = Update(model.PodsLoadedMsg{Pods: pods}, m)
	return m
}

func TestUpdate_PodsLoaded(t *testing.T) {
	b := newFakeBackend(&podview.Pod{Name: "web-2", Status: "Pending"}, &podview.Pod{Name: "web-1", Status: "Running"})
	m := loaded(t, newTestModel(t, b), b)

	assert.Equal(t, model.ModeDashboard, m.CurrentAppMode)
	require.Len(t, m.PodTable.Rows(), 2)
	assert.Equal(t, "web-1", m.PodTable.Rows()[0][0])
	assert.Contains(t, m.PodTable.Rows()[1][1], "Pending")
}

func TestUpdate_PodsLoadFailure(t *testing.T) {
	b := newFakeBackend()
	m := newTestModel(t, b)

	m, cmd := Update(model.PodsLoadedMsg{Err: errors.New("connection refused")}, m)
	assert.NotNil(t, cmd)
	assert.Equal(t, model.ModeDashboard, m.CurrentAppMode)
	assert.EqualError(t, m.LastErr, "connection refused")
	assert.Equal(t, model.StatusBarError, m.StatusBarMessageType)
}

func TestUpdate_StatusChangeRefreshesRows(t *testing.T) {
	b := newFakeBackend(&podview.Pod{Name: "web-1", Status: "Pending"})
	m := loaded(t, newTestModel(t, b), b)

	require.NoError(t, b.view.Apply(router.StatusUpdate{Pod: "web-1", Status: "Running"}))
	m, cmd := Update(model.PodsChangedMsg{}, m)

	assert.NotNil(t, cmd, "keeps listening for events")
	assert.Contains(t, m.PodTable.Rows()[0][1], "Running")
}

func TestUpdate_Connectivity(t *testing.T) {
	b := newFakeBackend()
	m := newTestModel(t, b)

	m, _ = Update(model.ConnectivityMsg{Online: true}, m)
	assert.True(t, m.Online)
	m, _ = Update(model.ConnectivityMsg{Online: false}, m)
	assert.False(t, m.Online)
}

func TestKeys_CreatePodFromTemplate(t *testing.T) {
	b := newFakeBackend()
	m := loaded(t, newTestModel(t, b), b)

	m, _ = Update(keyRunes("n"), m)
	require.Equal(t, model.ModeCreateInput, m.CurrentAppMode)
	m, _ = Update(keyRunes("lab jupyter-minimal"), m)
	m, cmd := Update(tea.KeyMsg{Type: tea.KeyEnter}, m)
	assert.Equal(t, model.ModeDashboard, m.CurrentAppMode)

	created := findMsg[model.PodCreatedMsg](t, collect(cmd))
	require.NoError(t, created.Err)
	require.Len(t, b.created, 1)
	assert.Equal(t, "lab", b.created[0].Name)
	assert.Equal(t, "jupyter/minimal-notebook:latest", b.created[0].Image)

	m, _ = Update(created, m)
	assert.Len(t, m.PodTable.Rows(), 1)
	assert.Equal(t, model.StatusBarSuccess, m.StatusBarMessageType)
}

func TestKeys_CreateCancelled(t *testing.T) {
	b := newFakeBackend()
	m := loaded(t, newTestModel(t, b), b)

	m, _ = Update(keyRunes("n"), m)
	m, _ = Update(keyRunes("scratch"), m)
	m, cmd := Update(tea.KeyMsg{Type: tea.KeyEsc}, m)

	assert.Nil(t, cmd)
	assert.Equal(t, model.ModeDashboard, m.CurrentAppMode)
	assert.Empty(t, b.created)
}

func TestKeys_DeleteNeedsConfirmation(t *testing.T) {
	b := newFakeBackend(&podview.Pod{Name: "web-1", Status: "Running"})
	m := loaded(t, newTestModel(t, b), b)

	m, _ = Update(keyRunes("d"), m)
	require.Equal(t, model.ModeConfirmDelete, m.CurrentAppMode)
	assert.Equal(t, "web-1", m.DeleteName)

	m, cmd := Update(keyRunes("n"), m)
	assert.Nil(t, cmd)
	assert.Equal(t, model.ModeDashboard, m.CurrentAppMode)

	m, _ = Update(keyRunes("d"), m)
	m, cmd = Update(keyRunes("y"), m)
	deleted := findMsg[model.PodDeletedMsg](t, collect(cmd))
	assert.Equal(t, "web-1", deleted.Name)
	assert.Equal(t, []string{"web-1"}, b.deleted)

	m, _ = Update(deleted, m)
	assert.Empty(t, m.PodTable.Rows())
}

func TestKeys_LogOverlayLifecycle(t *testing.T) {
	b := newFakeBackend(&podview.Pod{Name: "web-1", Status: "Running"})
	m := loaded(t, newTestModel(t, b), b)

	m, cmd := Update(tea.KeyMsg{Type: tea.KeyEnter}, m)
	require.Equal(t, model.ModeLogOverlay, m.CurrentAppMode)
	opened := findMsg[model.LogsOpenedMsg](t, collect(cmd))
	m, _ = Update(opened, m)
	require.NotNil(t, m.LogView)
	assert.Contains(t, m.LogViewport.View(), "history 2")

	// a streamed line arrives through the event queue
	assert.True(t, b.view.AppendLog(router.LogLine{Pod: "web-1", Entry: router.LogEntry{Message: "live line"}}))
	line := findMsg[model.LogLineMsg](t, collect(m.ListenEventsCmd()))
	m, _ = Update(line, m)
	assert.Contains(t, m.LogViewport.View(), "[web-1] live line")

	var copied string
	stubClipboard(t, func(s string) error { copied = s; return nil })
	m, _ = Update(keyRunes("y"), m)
	assert.Equal(t, "history 1\nhistory 2\n[web-1] live line", copied)

	lv := m.LogView
	m, cmd = Update(tea.KeyMsg{Type: tea.KeyEsc}, m)
	assert.Equal(t, model.ModeDashboard, m.CurrentAppMode)
	assert.Nil(t, m.LogView)
	findMsg[model.LogsClosedMsg](t, collect(cmd))
	assert.Equal(t, []string{"web-1"}, b.closed)
	assert.True(t, lv.Closed())
}

func TestUpdate_LogsOpenedAfterOverlayClosed(t *testing.T) {
	b := newFakeBackend(&podview.Pod{Name: "web-1", Status: "Running"})
	m := loaded(t, newTestModel(t, b), b)

	m, cmd := Update(tea.KeyMsg{Type: tea.KeyEnter}, m)
	m, _ = Update(tea.KeyMsg{Type: tea.KeyEsc}, m)
	opened := findMsg[model.LogsOpenedMsg](t, collect(cmd))

	m, cmd = Update(opened, m)
	assert.Nil(t, m.LogView)
	findMsg[model.LogsClosedMsg](t, collect(cmd))
	assert.True(t, opened.View.Closed())
}

func TestKeys_CopyURL(t *testing.T) {
	port := 30080
	b := newFakeBackend(
		&podview.Pod{Name: "a", Status: "Running", NodePort: &port},
		&podview.Pod{Name: "b", Status: "Pending"},
	)
	m := loaded(t, newTestModel(t, b), b)

	var copied string
	stubClipboard(t, func(s string) error { copied = s; return nil })

	m, _ = Update(keyRunes("u"), m)
	assert.Equal(t, "http://localhost:30080", copied)
	assert.Equal(t, model.StatusBarSuccess, m.StatusBarMessageType)

	m, _ = Update(tea.KeyMsg{Type: tea.KeyDown}, m)
	copied = ""
	m, _ = Update(keyRunes("u"), m)
	assert.Empty(t, copied)
	assert.Equal(t, model.StatusBarWarning, m.StatusBarMessageType)
}

func TestKeys_QuitOnlyOnDashboard(t *testing.T) {
	b := newFakeBackend()
	m := loaded(t, newTestModel(t, b), b)

	m, _ = Update(keyRunes("n"), m)
	m, _ = Update(keyRunes("q"), m)
	assert.Equal(t, model.ModeCreateInput, m.CurrentAppMode)
	assert.Equal(t, "q", m.CreateInput.Value())

	_, cmd := Update(tea.KeyMsg{Type: tea.KeyCtrlC}, m)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
