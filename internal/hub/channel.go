package hub

import (
	"context"
	"sync"
	"time"

	"podctl/pkg/logging"
)

// Options configures a Channel.
type Options struct {
	// Name tags log lines, e.g. "pod-hub" or "terminal/web-1".
	Name string

	// Schedule is the reconnect delay table. Nil uses DefaultBackoffSchedule.
	Schedule BackoffSchedule

	// Wait blocks for d or until ctx is done. Nil uses a timer.
	Wait func(ctx context.Context, d time.Duration) error
}

// Channel owns one logical hub connection and keeps it alive. It is the only
// writer of the ChannelState and the only caller of Dial and Conn.Close.
//
// Disconnected -> Connecting -> Connected -> Reconnecting -> Connected ...
// Reconnection is retried forever along the backoff schedule; Close returns
// the channel to Disconnected and stops retrying.
type Channel struct {
	name     string
	dialer   Dialer
	deliver  func(Message)
	schedule BackoffSchedule
	wait     func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	state   ChannelState
	conn    Conn
	gen     int
	connID  uint64
	cancel  context.CancelFunc
	hooks   []func(ctx context.Context)
	nextSub int
	states  map[int]*latest[ChannelState]
	online  map[int]*latest[bool]
}

// NewChannel returns a Disconnected channel. deliver receives every inbound
// invocation in receipt order, one at a time.
func NewChannel(dialer Dialer, deliver func(Message), opts Options) *Channel {
	if opts.Schedule == nil {
		opts.Schedule = DefaultBackoffSchedule
	}
	if opts.Wait == nil {
		opts.Wait = sleepContext
	}
	if opts.Name == "" {
		opts.Name = "hub"
	}
	return &Channel{
		name:     opts.Name,
		dialer:   dialer,
		deliver:  deliver,
		schedule: opts.Schedule,
		wait:     opts.Wait,
		states:   make(map[int]*latest[ChannelState]),
		online:   make(map[int]*latest[bool]),
	}
}

// State returns the current connection state.
func (c *Channel) State() ChannelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connection identifies the current connection. It increases every time the
// channel reaches Connected and is zero before the first connect.
func (c *Channel) Connection() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connID
}

// OnConnected registers fn to run on every transition into Connected,
// including the first. Hooks run on the channel's own goroutine and may
// call Invoke.
func (c *Channel) OnConnected(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, fn)
}

// Start begins connecting. Calling Start on a running channel is a no-op.
func (c *Channel) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.gen++
	gen := c.gen
	c.setStateLocked(Connecting)
	go c.run(runCtx, gen)
}

// Close stops retries, drops the connection and moves to Disconnected.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel == nil {
		return nil
	}
	c.cancel()
	c.cancel = nil
	c.gen++
	var err error
	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
	}
	c.setStateLocked(Disconnected)
	logging.Info("Hub", "[%s] closed", c.name)
	return err
}

// Invoke sends target(args...) on the live connection and waits for its
// completion. It fails fast with ErrNotConnected unless Connected.
func (c *Channel) Invoke(ctx context.Context, target string, args ...any) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == Connected
	c.mu.Unlock()
	if !connected || conn == nil {
		return ErrNotConnected
	}
	return conn.Invoke(ctx, target, args...)
}

func (c *Channel) run(ctx context.Context, gen int) {
	defer c.finish(gen)

	// -1: the very first attempt goes out without consulting the schedule.
	attempt := -1
	for {
		if attempt >= 0 {
			delay := c.schedule.Delay(attempt)
			logging.Debug("Hub", "[%s] reconnect attempt %d in %s", c.name, attempt+1, delay)
			if err := c.wait(ctx, delay); err != nil {
				return
			}
		}

		conn, err := c.dialer.Dial(ctx, c.deliver)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Warn("Hub", "[%s] connect failed: %v", c.name, err)
			if attempt < 0 {
				attempt = 1
			} else {
				attempt++
			}
			c.transition(gen, Reconnecting, nil)
			continue
		}

		if !c.transition(gen, Connected, conn) {
			_ = conn.Close()
			return
		}
		logging.Info("Hub", "[%s] connected", c.name)
		c.runHooks(ctx)

		select {
		case <-ctx.Done():
			return
		case <-conn.Done():
		}
		if ctx.Err() != nil {
			return
		}
		logging.Warn("Hub", "[%s] connection lost: %v", c.name, conn.Err())
		if !c.transition(gen, Reconnecting, nil) {
			return
		}
		attempt = 0
	}
}

// transition applies a state change made by run generation gen. It reports
// false when the run has been superseded by Close or a newer Start.
func (c *Channel) transition(gen int, state ChannelState, conn Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.conn = conn
	if state == Connected {
		c.connID++
	}
	c.setStateLocked(state)
	return true
}

// finish settles the channel when a run ends because its parent context was
// cancelled rather than through Close.
func (c *Channel) finish(gen int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	c.setStateLocked(Disconnected)
}

func (c *Channel) runHooks(ctx context.Context) {
	c.mu.Lock()
	hooks := make([]func(context.Context), len(c.hooks))
	copy(hooks, c.hooks)
	c.mu.Unlock()
	for _, fn := range hooks {
		fn(ctx)
	}
}

func (c *Channel) setStateLocked(state ChannelState) {
	if c.state == state {
		return
	}
	prevOnline := c.state == Connected
	c.state = state
	for _, w := range c.states {
		w.push(state)
	}
	if online := state == Connected; online != prevOnline {
		for _, w := range c.online {
			w.push(online)
		}
	}
}

// StateSubscription delivers ChannelState changes. Only the newest state is
// kept for a slow reader.
type StateSubscription struct {
	C     <-chan ChannelState
	close func()
}

// Close stops delivery and closes C.
func (s *StateSubscription) Close() { s.close() }

// ConnectivitySubscription delivers true when the channel becomes Connected
// and false when it leaves Connected. The current value is delivered first.
type ConnectivitySubscription struct {
	C     <-chan bool
	close func()
}

// Close stops delivery and closes C.
func (s *ConnectivitySubscription) Close() { s.close() }

// SubscribeState returns a subscription primed with the current state.
func (c *Channel) SubscribeState() *StateSubscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	w := newLatest[ChannelState]()
	w.push(c.state)
	c.states[id] = w
	return &StateSubscription{C: w.ch, close: func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.states[id]; ok {
			delete(c.states, id)
			close(w.ch)
		}
	}}
}

// SubscribeConnectivity returns the boolean connectivity stream that drives
// the UI indicator.
func (c *Channel) SubscribeConnectivity() *ConnectivitySubscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	w := newLatest[bool]()
	w.push(c.state == Connected)
	c.online[id] = w
	return &ConnectivitySubscription{C: w.ch, close: func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.online[id]; ok {
			delete(c.online, id)
			close(w.ch)
		}
	}}
}

// latest is a one-slot channel that keeps the newest value. Pushes happen
// under Channel.mu, so there is a single writer.
type latest[T any] struct {
	ch chan T
}

func newLatest[T any]() *latest[T] {
	return &latest[T]{ch: make(chan T, 1)}
}

func (l *latest[T]) push(v T) {
	select {
	case l.ch <- v:
		return
	default:
	}
	select {
	case <-l.ch:
	default:
	}
	select {
	case l.ch <- v:
	default:
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
