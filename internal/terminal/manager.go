package terminal

import (
	"context"
	"errors"
	"sort"
	"sync"

	"podctl/internal/hub"
	"podctl/internal/router"
)

// ChannelFactory builds the private channel for a pod's session. deliver is
// the session router's entry point.
type ChannelFactory func(pod string, deliver func(hub.Message)) Channel

// Manager keeps at most one session per pod.
type Manager struct {
	newChannel ChannelFactory
	prompt     string

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager returns an empty manager.
func NewManager(newChannel ChannelFactory, prompt string) *Manager {
	return &Manager{
		newChannel: newChannel,
		prompt:     prompt,
		sessions:   make(map[string]*Session),
	}
}

// Open starts a session for pod rendering to screen. An existing session
// for the same pod is closed first.
func (m *Manager) Open(ctx context.Context, pod string, screen Screen) (*Session, error) {
	m.mu.Lock()
	prev := m.sessions[pod]
	delete(m.sessions, pod)
	m.mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}

	r := router.New()
	s := NewSession(pod, screen, m.newChannel(pod, r.HandleMessage), r, m.prompt)
	if err := s.Open(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	raced := m.sessions[pod]
	m.sessions[pod] = s
	m.mu.Unlock()
	if raced != nil {
		_ = raced.Close()
	}
	return s, nil
}

// Get returns the live session for pod.
func (m *Manager) Get(pod string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[pod]
	return s, ok
}

// Pods lists pods with a live session.
func (m *Manager) Pods() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	pods := make([]string, 0, len(m.sessions))
	for pod := range m.sessions {
		pods = append(pods, pod)
	}
	sort.Strings(pods)
	return pods
}

// Close closes the session for pod, if any.
func (m *Manager) Close(pod string) error {
	m.mu.Lock()
	s := m.sessions[pod]
	delete(m.sessions, pod)
	m.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.Close()
}

// CloseAll closes every session.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
