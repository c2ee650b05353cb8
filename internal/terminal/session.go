// Package terminal implements the interactive pod terminal: local line
// editing and echo, command dispatch over a dedicated hub channel, and
// rendering of the output frames that come back.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"podctl/internal/router"
	"podctl/pkg/logging"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
)

// State is the lifecycle of a Session.
type State int

const (
	Uninitialized State = iota
	Connecting
	AwaitingPrompt
	Ready
	Closed
)

// String makes State satisfy the fmt.Stringer interface.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Connecting:
		return "Connecting"
	case AwaitingPrompt:
		return "AwaitingPrompt"
	case Ready:
		return "Ready"
	case Closed:
		return "Closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	DefaultPrompt = "$ "
	errorMarker   = "✗ Error: "
	sendCommand   = "sendCommand"
)

// ErrAlreadyOpened is returned when Open is called twice.
var ErrAlreadyOpened = errors.New("terminal session already opened")

// Channel is the session's private hub connection.
type Channel interface {
	Start(ctx context.Context)
	Close() error
	Invoke(ctx context.Context, target string, args ...any) error
	OnConnected(fn func(ctx context.Context))
}

// Session is one interactive terminal attached to a pod.
type Session struct {
	id      string
	pod     string
	prompt  string
	screen  Screen
	channel Channel
	router  *router.Router

	mu       sync.Mutex
	state    State
	buffer   []rune
	listener *router.Listener
	ctx      context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup
}

// NewSession wires a session for pod. Frames decoded by r for the session's
// channel drive the output side. An empty prompt uses DefaultPrompt.
func NewSession(pod string, screen Screen, ch Channel, r *router.Router, prompt string) *Session {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &Session{
		id:      uuid.NewString(),
		pod:     pod,
		prompt:  prompt,
		screen:  screen,
		channel: ch,
		router:  r,
	}
}

// ID uniquely identifies the session for logging.
func (s *Session) ID() string { return s.id }

// Pod returns the pod the session is attached to.
func (s *Session) Pod() string { return s.pod }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open shows the connecting banner and starts the session channel.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Uninitialized {
		s.mu.Unlock()
		return ErrAlreadyOpened
	}
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.screen.WriteLine("Pod Terminal")
	s.screen.WriteLine(fmt.Sprintf("Connecting to %s...", s.pod))
	s.screen.WriteLine("")
	s.state = Connecting

	s.listener = s.router.Listen(router.StreamTerminal, s.handleFrame)
	s.channel.OnConnected(s.onChannelConnected)
	s.mu.Unlock()

	logging.Info("Terminal", "session %s opening for pod %s", s.id, s.pod)
	s.channel.Start(s.ctx)
	return nil
}

func (s *Session) onChannelConnected(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Connecting {
		logging.Debug("Terminal", "session %s channel reconnected in state %s", s.id, s.state)
		return
	}
	s.screen.WriteLine("✓ Connected to server")
	s.state = AwaitingPrompt
}

func (s *Session) handleFrame(f router.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Closed {
		return
	}

	switch f := f.(type) {
	case router.TerminalConnected:
		if f.Greeting != "" {
			s.screen.WriteLine(f.Greeting)
		}
		s.screen.Write(s.prompt)
		s.state = Ready
	case router.TerminalOutput:
		lines := strings.Split(f.Text, "\n")
		for i, line := range lines {
			s.screen.Write(line)
			if i < len(lines)-1 {
				s.screen.Write("\r\n")
			}
		}
		s.screen.ScrollToBottom()
	case router.TerminalError:
		s.screen.Write("\r\n")
		s.screen.WriteLine(errorMarker + f.Message)
	}
}

// HandleInput feeds raw keyboard input into the session. Input is only
// accepted once the prompt is up.
func (s *Session) HandleInput(data string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Ready {
		return
	}

	runes := []rune(data)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\r':
			s.submitLocked()
		case r == 0x7f || r == '\b':
			s.backspaceLocked()
		case r == 0x1b:
			i = skipEscape(runes, i)
		case r < 0x20 || (r >= 0x80 && r <= 0x9f):
		default:
			s.buffer = append(s.buffer, r)
			s.screen.Write(string(r))
		}
	}
}

// skipEscape returns the index of the last rune of the escape sequence that
// starts at runes[i].
func skipEscape(runes []rune, i int) int {
	if i+1 >= len(runes) {
		return i
	}
	switch runes[i+1] {
	case '[':
		for j := i + 2; j < len(runes); j++ {
			if runes[j] >= 0x40 && runes[j] <= 0x7e {
				return j
			}
		}
		return len(runes) - 1
	case 'O':
		return min(i+2, len(runes)-1)
	default:
		return i + 1
	}
}

func (s *Session) backspaceLocked() {
	if len(s.buffer) == 0 {
		return
	}
	last := s.buffer[len(s.buffer)-1]
	s.buffer = s.buffer[:len(s.buffer)-1]
	w := runewidth.RuneWidth(last)
	if w == 0 {
		return
	}
	s.screen.Write(strings.Repeat("\b", w) + strings.Repeat(" ", w) + strings.Repeat("\b", w))
}

func (s *Session) submitLocked() {
	line := string(s.buffer)
	s.buffer = s.buffer[:0]
	s.screen.Write("\r\n")

	if strings.TrimSpace(line) == "" {
		s.screen.Write(s.prompt)
		return
	}

	s.inflight.Add(1)
	go s.dispatch(line)
}

func (s *Session) dispatch(line string) {
	defer s.inflight.Done()

	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	logging.Debug("Terminal", "session %s sending %q", s.id, line)
	err := s.channel.Invoke(ctx, sendCommand, s.pod, line)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Closed {
		return
	}
	if err != nil {
		logging.Warn("Terminal", "session %s command failed: %v", s.id, err)
		s.screen.WriteLine(errorMarker + err.Error())
	}
	s.screen.Write(s.prompt)
}

// Close tears the session down. Frames arriving afterwards are ignored.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		return nil
	}
	s.state = Closed
	s.buffer = nil
	if s.listener != nil {
		s.listener.Close()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	err := s.channel.Close()
	s.inflight.Wait()
	logging.Info("Terminal", "session %s for pod %s closed", s.id, s.pod)
	return err
}
