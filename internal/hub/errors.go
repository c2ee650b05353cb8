package hub

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned by Invoke while the channel is not Connected.
	// Callers rely on reconnect and subscription replay instead of retrying.
	ErrNotConnected = errors.New("hub channel is not connected")

	// ErrTransportDropped fails invocations still waiting for a completion
	// when the underlying connection goes away.
	ErrTransportDropped = errors.New("hub connection dropped")

	// ErrHandshake reports a rejected or malformed protocol handshake.
	ErrHandshake = errors.New("hub handshake failed")
)

// FailureKind classifies hub errors for display.
type FailureKind int

const (
	FailureUnknown          FailureKind = iota
	FailureNotConnected                 // send attempted while not Connected
	FailureRemoteRejected               // the server completed an invocation with an error
	FailureTransportDropped             // the connection went away mid-call
)

// String makes FailureKind satisfy the fmt.Stringer interface.
func (k FailureKind) String() string {
	switch k {
	case FailureNotConnected:
		return "NotConnected"
	case FailureRemoteRejected:
		return "RemoteRejected"
	case FailureTransportDropped:
		return "TransportDropped"
	default:
		return "Unknown"
	}
}

// RemoteError is a completion that carried an error for a specific invocation.
type RemoteError struct {
	Target  string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Target, e.Message)
}

// Classify maps err onto a FailureKind.
func Classify(err error) FailureKind {
	var remote *RemoteError
	switch {
	case err == nil:
		return FailureUnknown
	case errors.Is(err, ErrNotConnected):
		return FailureNotConnected
	case errors.Is(err, ErrTransportDropped):
		return FailureTransportDropped
	case errors.As(err, &remote):
		return FailureRemoteRejected
	default:
		return FailureUnknown
	}
}

// IsTransient reports whether err is a connectivity failure that reconnect
// and replay already cover.
func IsTransient(err error) bool {
	kind := Classify(err)
	return kind == FailureNotConnected || kind == FailureTransportDropped
}
