// Package podview keeps the locally tracked pod records current with hub
// status events and collects streamed log lines for open log views.
package podview

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"podctl/internal/router"
	"podctl/pkg/logging"
)

// DefaultMaxLines bounds a log view when no limit is configured.
const DefaultMaxLines = 5000

// ErrStaleTarget is returned by Apply for a pod that is not tracked. Late
// events after a delete are expected and not a failure.
var ErrStaleTarget = errors.New("pod is not tracked")

// StatusUpdate is a partial status change; nil fields were not sent.
type StatusUpdate = router.StatusUpdate

// View is the reducer from hub events onto tracked pods and log views.
type View struct {
	maxLines int

	mu        sync.Mutex
	pods      []*Pod
	byName    map[string]*Pod
	logs      map[string]*LogView
	onChange  []func(pod string)
	listeners []*router.Listener
}

// New returns an empty view. maxLines <= 0 uses DefaultMaxLines.
func New(maxLines int) *View {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	return &View{
		maxLines: maxLines,
		byName:   make(map[string]*Pod),
		logs:     make(map[string]*LogView),
	}
}

// Track replaces the tracked set. Records are kept by reference and updated
// in place.
func (v *View) Track(pods []*Pod) {
	v.mu.Lock()
	v.pods = make([]*Pod, 0, len(pods))
	v.byName = make(map[string]*Pod, len(pods))
	for _, p := range pods {
		if p == nil {
			continue
		}
		v.pods = append(v.pods, p)
		v.byName[p.Name] = p
	}
	v.mu.Unlock()
	v.notify("")
}

// Add tracks one more record, replacing any with the same name.
func (v *View) Add(p *Pod) {
	v.mu.Lock()
	if _, ok := v.byName[p.Name]; ok {
		v.removeLocked(p.Name)
	}
	v.pods = append(v.pods, p)
	v.byName[p.Name] = p
	v.mu.Unlock()
	v.notify(p.Name)
}

// Remove stops tracking name. Later events for it are stale.
func (v *View) Remove(name string) {
	v.mu.Lock()
	found := v.removeLocked(name)
	v.mu.Unlock()
	if found {
		v.notify(name)
	}
}

func (v *View) removeLocked(name string) bool {
	if _, ok := v.byName[name]; !ok {
		return false
	}
	delete(v.byName, name)
	for i, p := range v.pods {
		if p.Name == name {
			v.pods = append(v.pods[:i], v.pods[i+1:]...)
			break
		}
	}
	return true
}

// Pods returns copies of the tracked records ordered by name.
func (v *View) Pods() []Pod {
	v.mu.Lock()
	out := make([]Pod, 0, len(v.pods))
	for _, p := range v.pods {
		out = append(out, *p)
	}
	v.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns a copy of the tracked record for name.
func (v *View) Get(name string) (Pod, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	p, ok := v.byName[name]
	if !ok {
		return Pod{}, false
	}
	return *p, true
}

// OnChange registers fn to run after a tracked record changes. pod is empty
// when the whole set was replaced.
func (v *View) OnChange(fn func(pod string)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onChange = append(v.onChange, fn)
}

func (v *View) notify(pod string) {
	v.mu.Lock()
	fns := append([]func(string){}, v.onChange...)
	v.mu.Unlock()
	for _, fn := range fns {
		fn(pod)
	}
}

// Apply merges u into the matching record. Status is always taken; address
// and node port only when present.
func (v *View) Apply(u StatusUpdate) error {
	v.mu.Lock()
	p, ok := v.byName[u.Pod]
	if !ok {
		v.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrStaleTarget, u.Pod)
	}
	p.Status = u.Status
	if u.Address != nil {
		p.Address = *u.Address
	}
	if u.NodePort != nil {
		port := *u.NodePort
		p.NodePort = &port
	}
	v.mu.Unlock()

	v.notify(u.Pod)
	return nil
}

// OpenLogView starts collecting lines for pod, seeded with history. An
// existing view for the pod is closed and replaced.
func (v *View) OpenLogView(pod string, history []string) *LogView {
	lv := newLogView(v, pod, v.maxLines)
	for _, line := range history {
		lv.append(LogEntry{Message: line})
	}

	v.mu.Lock()
	prev := v.logs[pod]
	v.logs[pod] = lv
	v.mu.Unlock()

	if prev != nil {
		prev.markClosed()
	}
	return lv
}

func (v *View) closeLogView(lv *LogView) {
	v.mu.Lock()
	if v.logs[lv.pod] == lv {
		delete(v.logs, lv.pod)
	}
	v.mu.Unlock()
}

// AppendLog adds a streamed line to the open view for its pod. Lines for
// pods without an open view are discarded.
func (v *View) AppendLog(line router.LogLine) bool {
	v.mu.Lock()
	lv := v.logs[line.Pod]
	v.mu.Unlock()
	if lv == nil {
		return false
	}
	return lv.append(LogEntry{Timestamp: line.Entry.Timestamp, Message: line.Entry.Message, Pod: line.Pod})
}

// Attach registers the view on r's status and log streams.
func (v *View) Attach(r *router.Router) {
	status := r.Listen(router.StreamStatus, func(f router.Frame) {
		sc, ok := f.(router.StatusChanged)
		if !ok {
			return
		}
		if err := v.Apply(sc.Update); err != nil {
			logging.Debug("PodView", "discarding status %q: %v", sc.Update.Status, err)
		}
	})
	logs := r.Listen(router.StreamLog, func(f router.Frame) {
		if line, ok := f.(router.LogLine); ok {
			v.AppendLog(line)
		}
	})

	v.mu.Lock()
	v.listeners = append(v.listeners, status, logs)
	v.mu.Unlock()
}

// Detach removes every listener registered by Attach.
func (v *View) Detach() {
	v.mu.Lock()
	listeners := v.listeners
	v.listeners = nil
	v.mu.Unlock()
	for _, l := range listeners {
		l.Close()
	}
}
