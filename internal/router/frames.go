package router

import (
	"fmt"

	"podctl/internal/hub"
)

// Stream groups frames by the kind of consumer that handles them.
type Stream int

const (
	StreamStatus Stream = iota
	StreamLog
	StreamTerminal
	StreamError
)

// String makes Stream satisfy the fmt.Stringer interface.
func (s Stream) String() string {
	switch s {
	case StreamStatus:
		return "status"
	case StreamLog:
		return "log"
	case StreamTerminal:
		return "terminal"
	case StreamError:
		return "error"
	default:
		return fmt.Sprintf("Stream(%d)", int(s))
	}
}

// Frame is a decoded inbound hub message. The set of frame types is closed.
type Frame interface {
	isFrame()
}

// StatusUpdate is the PodStatusChanged payload. Address and NodePort are nil
// when the server left them out.
type StatusUpdate struct {
	Pod      string  `json:"podName"`
	Status   string  `json:"status"`
	Address  *string `json:"podIP,omitempty"`
	NodePort *int    `json:"nodePort,omitempty"`
}

// LogEntry is one streamed log line.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

// StatusChanged carries a partial pod status update.
type StatusChanged struct {
	Update StatusUpdate
}

// LogLine is a log entry for a named pod.
type LogLine struct {
	Pod   string
	Entry LogEntry
}

// Display renders the line the way log views show it.
func (l LogLine) Display() string {
	return fmt.Sprintf("[%s] %s", l.Pod, l.Entry.Message)
}

// TerminalOutput is raw command output, possibly spanning several lines.
type TerminalOutput struct {
	Text string
}

// TerminalConnected is the greeting sent when a terminal is attached.
type TerminalConnected struct {
	Greeting string
}

// TerminalError is an error reported by the terminal endpoint.
type TerminalError struct {
	Message string
}

// ChannelError is an inbound message that could not be turned into a frame.
type ChannelError struct {
	Target string
	Err    error
}

func (e ChannelError) Error() string {
	return fmt.Sprintf("hub message %q: %v", e.Target, e.Err)
}

func (StatusChanged) isFrame()     {}
func (LogLine) isFrame()           {}
func (TerminalOutput) isFrame()    {}
func (TerminalConnected) isFrame() {}
func (TerminalError) isFrame()     {}
func (ChannelError) isFrame()      {}

// StreamOf returns the stream f belongs to.
func StreamOf(f Frame) Stream {
	switch f.(type) {
	case StatusChanged:
		return StreamStatus
	case LogLine:
		return StreamLog
	case TerminalOutput, TerminalConnected, TerminalError:
		return StreamTerminal
	case ChannelError:
		return StreamError
	default:
		panic(fmt.Sprintf("router: unknown frame type %T", f))
	}
}

// Decode maps a hub invocation onto a Frame. Anything that does not decode
// becomes a ChannelError.
func Decode(msg hub.Message) Frame {
	fail := func(err error) Frame { return ChannelError{Target: msg.Target, Err: err} }

	switch msg.Target {
	case "PodStatusChanged":
		var u StatusUpdate
		if err := msg.Arg(0, &u); err != nil {
			return fail(err)
		}
		if u.Pod == "" {
			return fail(fmt.Errorf("status update without podName"))
		}
		return StatusChanged{Update: u}
	case "PodLog":
		var pod string
		var entry LogEntry
		if err := msg.Arg(0, &pod); err != nil {
			return fail(err)
		}
		if err := msg.Arg(1, &entry); err != nil {
			return fail(err)
		}
		return LogLine{Pod: pod, Entry: entry}
	case "Output":
		var text string
		if err := msg.Arg(0, &text); err != nil {
			return fail(err)
		}
		return TerminalOutput{Text: text}
	case "Connected":
		var greeting string
		if len(msg.Arguments) > 0 {
			if err := msg.Arg(0, &greeting); err != nil {
				return fail(err)
			}
		}
		return TerminalConnected{Greeting: greeting}
	case "Error":
		var text string
		if err := msg.Arg(0, &text); err != nil {
			return fail(err)
		}
		return TerminalError{Message: text}
	default:
		return fail(fmt.Errorf("unknown target"))
	}
}
