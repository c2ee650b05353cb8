package podview

import (
	"fmt"
	"sync"

	"podctl/internal/router"
)

// LogEntry is one line in a log view. History lines have no timestamp or pod.
type LogEntry struct {
	Timestamp string
	Message   string
	Pod       string
}

// String renders the entry for display. Streamed lines use the router's
// pod prefix, preceded by the timestamp when the hub sent one.
func (e LogEntry) String() string {
	if e.Pod == "" {
		return e.Message
	}
	line := router.LogLine{Pod: e.Pod, Entry: router.LogEntry{Timestamp: e.Timestamp, Message: e.Message}}.Display()
	if e.Timestamp == "" {
		return line
	}
	return fmt.Sprintf("[%s] %s", e.Timestamp, line)
}

// LogView collects the lines of one pod while it is open.
type LogView struct {
	view     *View
	pod      string
	maxLines int

	mu       sync.Mutex
	entries  []LogEntry
	closed   bool
	onAppend func(LogEntry)
}

func newLogView(v *View, pod string, maxLines int) *LogView {
	return &LogView{view: v, pod: pod, maxLines: maxLines}
}

// Pod returns the pod this view belongs to.
func (lv *LogView) Pod() string { return lv.pod }

// OnAppend registers fn to run for every line appended after the call.
func (lv *LogView) OnAppend(fn func(LogEntry)) {
	lv.mu.Lock()
	defer lv.mu.Unlock()
	lv.onAppend = fn
}

// Follow returns the lines collected so far and registers fn for every line
// appended afterwards. No line is both returned and passed to fn.
func (lv *LogView) Follow(fn func(LogEntry)) []LogEntry {
	lv.mu.Lock()
	defer lv.mu.Unlock()
	lv.onAppend = fn
	return append([]LogEntry(nil), lv.entries...)
}

func (lv *LogView) append(e LogEntry) bool {
	lv.mu.Lock()
	if lv.closed {
		lv.mu.Unlock()
		return false
	}
	lv.entries = append(lv.entries, e)
	if over := len(lv.entries) - lv.maxLines; over > 0 {
		lv.entries = append(lv.entries[:0:0], lv.entries[over:]...)
	}
	fn := lv.onAppend
	lv.mu.Unlock()

	if fn != nil {
		fn(e)
	}
	return true
}

// Entries returns a copy of the collected lines, oldest first.
func (lv *LogView) Entries() []LogEntry {
	lv.mu.Lock()
	defer lv.mu.Unlock()
	return append([]LogEntry(nil), lv.entries...)
}

// Lines returns the collected lines rendered for display.
func (lv *LogView) Lines() []string {
	entries := lv.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.String()
	}
	return out
}

// Closed reports whether the view stopped collecting.
func (lv *LogView) Closed() bool {
	lv.mu.Lock()
	defer lv.mu.Unlock()
	return lv.closed
}

// Close stops collecting. Lines for the pod are discarded from now on.
func (lv *LogView) Close() {
	lv.markClosed()
	lv.view.closeLogView(lv)
}

func (lv *LogView) markClosed() {
	lv.mu.Lock()
	defer lv.mu.Unlock()
	lv.closed = true
}
