// Package router decodes inbound hub messages into typed frames and fans
// them out to the listeners registered for each stream.
package router

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"podctl/internal/hub"
	"podctl/pkg/logging"
)

// Handler processes one frame. Handlers run on the hub read loop and must
// not block on hub invocations.
type Handler func(Frame)

// Listener is a registration on one stream.
type Listener struct {
	id     int64
	stream Stream
	router *Router

	handler Handler

	// channel listeners
	mu     sync.Mutex
	ch     chan Frame
	closed atomic.Bool
}

// Stream returns the stream the listener is registered on.
func (l *Listener) Stream() Stream { return l.stream }

// Close stops delivery. Frames dispatched after Close are not delivered.
func (l *Listener) Close() {
	if l.closed.Swap(true) {
		return
	}
	l.router.remove(l)
	l.mu.Lock()
	if l.ch != nil {
		close(l.ch)
	}
	l.mu.Unlock()
}

// Metrics tracks router throughput.
type Metrics struct {
	ActiveListeners int
	FramesPublished int64
	FramesDelivered int64
	FramesFailed    int64
	FramesDropped   int64
	LastFrameTime   time.Time
	FramesByStream  map[Stream]int64
}

// Router fans frames out by stream. Frames are dispatched synchronously in
// the order they are handed in.
type Router struct {
	mu        sync.RWMutex
	listeners map[Stream]map[int64]*Listener
	nextID    int64
	metrics   Metrics
}

// New returns a router with no listeners.
func New() *Router {
	return &Router{
		listeners: make(map[Stream]map[int64]*Listener),
		metrics:   Metrics{FramesByStream: make(map[Stream]int64)},
	}
}

// Listen registers handler for every frame on stream.
func (r *Router) Listen(stream Stream, handler Handler) *Listener {
	l := &Listener{stream: stream, router: r, handler: handler}
	r.add(l)
	return l
}

// ListenChannel registers a buffered channel for stream. Frames that do not
// fit are dropped and counted. Close closes the channel.
func (r *Router) ListenChannel(stream Stream, bufferSize int) (<-chan Frame, *Listener) {
	l := &Listener{stream: stream, router: r, ch: make(chan Frame, bufferSize)}
	r.add(l)
	return l.ch, l
}

func (r *Router) add(l *Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	l.id = r.nextID
	if r.listeners[l.stream] == nil {
		r.listeners[l.stream] = make(map[int64]*Listener)
	}
	r.listeners[l.stream][l.id] = l
	r.metrics.ActiveListeners++
}

func (r *Router) remove(l *Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listeners[l.stream][l.id]; ok {
		delete(r.listeners[l.stream], l.id)
		r.metrics.ActiveListeners--
	}
}

// HandleMessage decodes msg and dispatches it. It is the deliver function
// given to a hub.Channel.
func (r *Router) HandleMessage(msg hub.Message) {
	r.Dispatch(Decode(msg))
}

// Dispatch delivers f to every listener of its stream, once each. A
// panicking handler is recovered and counted; the others still run.
func (r *Router) Dispatch(f Frame) {
	stream := StreamOf(f)

	r.mu.RLock()
	targets := make([]*Listener, 0, len(r.listeners[stream]))
	for _, l := range r.listeners[stream] {
		targets = append(targets, l)
	}
	r.mu.RUnlock()

	if len(targets) == 0 {
		if ce, ok := f.(ChannelError); ok {
			logging.Debug("Router", "unhandled: %v", ce)
		}
	}

	var delivered, failed, dropped int64
	for _, l := range targets {
		if l.closed.Load() {
			continue
		}
		switch ok := r.deliver(l, f); {
		case ok:
			delivered++
		case l.ch != nil:
			dropped++
		default:
			failed++
		}
	}

	r.mu.Lock()
	r.metrics.FramesPublished++
	r.metrics.FramesByStream[stream]++
	r.metrics.FramesDelivered += delivered
	r.metrics.FramesFailed += failed
	r.metrics.FramesDropped += dropped
	r.metrics.LastFrameTime = time.Now()
	r.mu.Unlock()
}

func (r *Router) deliver(l *Listener, f Frame) (ok bool) {
	if l.ch != nil {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.closed.Load() {
			return true
		}
		select {
		case l.ch <- f:
			return true
		default:
			return false
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			logging.Error("Router", fmt.Errorf("%v", rec), "%s listener panicked on %T", l.stream, f)
			ok = false
		}
	}()
	l.handler(f)
	return true
}

// Metrics returns a copy of the router counters.
func (r *Router) Metrics() Metrics {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.metrics
	m.FramesByStream = make(map[Stream]int64, len(r.metrics.FramesByStream))
	for k, v := range r.metrics.FramesByStream {
		m.FramesByStream[k] = v
	}
	return m
}
