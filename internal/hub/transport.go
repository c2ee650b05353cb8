package hub

import "context"

// Conn is one established hub connection. Inbound invocations are handed to
// the deliver function given to Dial, in receipt order, on a single goroutine.
type Conn interface {
	// Invoke sends target(args...) and waits for the server's completion.
	Invoke(ctx context.Context, target string, args ...any) error

	// Done is closed when the connection is gone, for any reason.
	Done() <-chan struct{}

	// Err reports why Done was closed; nil after a local Close.
	Err() error

	// Close tears the connection down.
	Close() error
}

// Dialer establishes Conns. Only Channel calls Dial.
type Dialer interface {
	Dial(ctx context.Context, deliver func(Message)) (Conn, error)
}
