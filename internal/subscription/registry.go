// Package subscription tracks which pods the client watches on the hub and
// replays that set whenever the hub connection comes back.
package subscription

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"podctl/internal/hub"
	"podctl/pkg/logging"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Kind is what is being watched for a pod.
type Kind int

const (
	StatusWatch Kind = iota
	LogStream
)

func (k Kind) String() string {
	switch k {
	case StatusWatch:
		return "status"
	case LogStream:
		return "logs"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) subscribeTarget() string {
	if k == LogStream {
		return "StartLogStream"
	}
	return "SubscribeToPod"
}

func (k Kind) unsubscribeTarget() string {
	if k == LogStream {
		return "StopLogStream"
	}
	return "UnsubscribeFromPod"
}

// Subscription identifies one (pod, kind) interest.
type Subscription struct {
	Pod  string
	Kind Kind
}

func (s Subscription) String() string {
	return s.Pod + "/" + s.Kind.String()
}

// Invoker is the send side of a hub channel.
type Invoker interface {
	Invoke(ctx context.Context, target string, args ...any) error
	State() hub.ChannelState
	Connection() uint64
}

// Registry is the set of active subscriptions. It is the source of truth for
// what gets replayed after a reconnect.
type Registry struct {
	invoker Invoker

	mu      sync.Mutex
	entries sets.Set[Subscription]
	// connection each entry was last sent on
	sentOn map[Subscription]uint64
}

// NewRegistry returns an empty registry that sends through invoker.
func NewRegistry(invoker Invoker) *Registry {
	return &Registry{
		invoker: invoker,
		entries: sets.New[Subscription](),
		sentOn:  map[Subscription]uint64{},
	}
}

// Subscribe records (pod, kind) and, when connected, tells the hub. A
// duplicate subscription sends nothing. Connectivity failures are absorbed:
// the entry stays and is replayed on the next connect. A rejection by the
// hub is returned.
func (r *Registry) Subscribe(ctx context.Context, pod string, kind Kind) error {
	sub := Subscription{Pod: pod, Kind: kind}

	r.mu.Lock()
	if r.entries.Has(sub) {
		r.mu.Unlock()
		return nil
	}
	r.entries.Insert(sub)
	r.mu.Unlock()

	if r.invoker.State() != hub.Connected {
		logging.Debug("Subscriptions", "%s recorded for replay", sub)
		return nil
	}
	if !r.markSent(sub, r.invoker.Connection()) {
		// a concurrent replay already sent it
		return nil
	}
	return r.send(ctx, kind.subscribeTarget(), sub)
}

// Unsubscribe forgets (pod, kind). The hub is only told when connected; a
// disconnected hub has already dropped server-side state.
func (r *Registry) Unsubscribe(ctx context.Context, pod string, kind Kind) error {
	sub := Subscription{Pod: pod, Kind: kind}

	r.mu.Lock()
	if !r.entries.Has(sub) {
		r.mu.Unlock()
		return nil
	}
	r.entries.Delete(sub)
	delete(r.sentOn, sub)
	r.mu.Unlock()

	if r.invoker.State() != hub.Connected {
		return nil
	}
	return r.send(ctx, kind.unsubscribeTarget(), sub)
}

// ReplayAll re-sends the subscribe invocation for every current entry that
// has not been sent on the current connection yet. It is registered as the
// channel's OnConnected hook, so a Subscribe racing the hook is not sent twice.
func (r *Registry) ReplayAll(ctx context.Context) {
	conn := r.invoker.Connection()
	var subs []Subscription
	for _, sub := range r.Snapshot() {
		if r.markSent(sub, conn) {
			subs = append(subs, sub)
		}
	}
	if len(subs) == 0 {
		return
	}
	logging.Info("Subscriptions", "replaying %d subscription(s)", len(subs))
	for _, sub := range subs {
		if err := r.send(ctx, sub.Kind.subscribeTarget(), sub); err != nil {
			logging.Warn("Subscriptions", "replay of %s rejected: %v", sub, err)
		}
	}
}

// Has reports whether (pod, kind) is subscribed.
func (r *Registry) Has(pod string, kind Kind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries.Has(Subscription{Pod: pod, Kind: kind})
}

// Snapshot returns the current entries ordered by pod, then kind.
func (r *Registry) Snapshot() []Subscription {
	r.mu.Lock()
	out := r.entries.UnsortedList()
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Pod != out[j].Pod {
			return out[i].Pod < out[j].Pod
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries.Len()
}

// markSent records that sub goes out on conn. It reports false when sub was
// already sent on conn or has been removed meanwhile.
func (r *Registry) markSent(sub Subscription, conn uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.entries.Has(sub) {
		return false
	}
	if last, ok := r.sentOn[sub]; ok && last == conn {
		return false
	}
	r.sentOn[sub] = conn
	return true
}

func (r *Registry) send(ctx context.Context, target string, sub Subscription) error {
	err := r.invoker.Invoke(ctx, target, sub.Pod)
	if err == nil {
		return nil
	}
	if hub.IsTransient(err) {
		logging.Debug("Subscriptions", "%s for %s deferred: %v", target, sub, err)
		return nil
	}
	if ctx.Err() != nil {
		return nil
	}
	return fmt.Errorf("%s %s: %w", target, sub.Pod, err)
}
