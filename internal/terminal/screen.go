package terminal

import (
	"io"
	"sync"
)

// Screen is where a session renders. Implementations handle their own
// scrollback; the session only appends.
type Screen interface {
	// Write appends text without a line break.
	Write(s string)
	// WriteLine appends text followed by a line break.
	WriteLine(s string)
	// ScrollToBottom brings the newest output into view.
	ScrollToBottom()
}

// StreamScreen renders to a raw-mode terminal or any other io.Writer.
type StreamScreen struct {
	mu  sync.Mutex
	out io.Writer
}

// NewStreamScreen returns a Screen writing to out.
func NewStreamScreen(out io.Writer) *StreamScreen {
	return &StreamScreen{out: out}
}

func (s *StreamScreen) Write(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.out, text)
}

func (s *StreamScreen) WriteLine(text string) {
	s.Write(text + "\r\n")
}

// ScrollToBottom is a no-op: a stream is always at its newest line.
func (s *StreamScreen) ScrollToBottom() {}
