package router

import (
	"encoding/json"
	"sync"
	"testing"

	"podctl/internal/hub"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invocation(t *testing.T, target string, args ...any) hub.Message {
	t.Helper()
	msg, err := hub.NewInvocation(target, args...)
	require.NoError(t, err)
	return msg
}

func TestDecode(t *testing.T) {
	addr := "10.0.0.7"
	port := 30080

	tests := []struct {
		name string
		msg  hub.Message
		want Frame
	}{
		{
			name: "status with optionals",
			msg: invocation(t, "PodStatusChanged", map[string]any{
				"podName": "web-1", "status": "Running", "podIP": addr, "nodePort": port,
			}),
			want: StatusChanged{Update: StatusUpdate{Pod: "web-1", Status: "Running", Address: &addr, NodePort: &port}},
		},
		{
			name: "status without optionals",
			msg:  invocation(t, "PodStatusChanged", map[string]any{"podName": "web-1", "status": "Pending"}),
			want: StatusChanged{Update: StatusUpdate{Pod: "web-1", Status: "Pending"}},
		},
		{
			name: "log",
			msg:  invocation(t, "PodLog", "web-1", LogEntry{Timestamp: "2024-01-01T00:00:00Z", Message: "ready"}),
			want: LogLine{Pod: "web-1", Entry: LogEntry{Timestamp: "2024-01-01T00:00:00Z", Message: "ready"}},
		},
		{
			name: "output",
			msg:  invocation(t, "Output", "a\nb"),
			want: TerminalOutput{Text: "a\nb"},
		},
		{
			name: "connected",
			msg:  invocation(t, "Connected", "Welcome to web-1"),
			want: TerminalConnected{Greeting: "Welcome to web-1"},
		},
		{
			name: "connected without greeting",
			msg:  invocation(t, "Connected"),
			want: TerminalConnected{},
		},
		{
			name: "error",
			msg:  invocation(t, "Error", "command not found"),
			want: TerminalError{Message: "command not found"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode(tt.msg))
		})
	}
}

func TestDecode_Failures(t *testing.T) {
	cases := []hub.Message{
		invocation(t, "SomethingNew", 1),
		invocation(t, "PodLog", "web-1"),
		invocation(t, "Output", 42),
		invocation(t, "PodStatusChanged", map[string]any{"status": "Running"}),
		{Type: hub.TypeInvocation, Target: "Error", Arguments: []json.RawMessage{json.RawMessage(`{`)}},
	}
	for _, msg := range cases {
		f := Decode(msg)
		ce, ok := f.(ChannelError)
		require.True(t, ok, "%s decoded to %T", msg.Target, f)
		assert.Equal(t, msg.Target, ce.Target)
		assert.Error(t, ce.Err)
		assert.Equal(t, StreamError, StreamOf(f))
	}
}

func TestLogLineDisplay(t *testing.T) {
	l := LogLine{Pod: "web-1", Entry: LogEntry{Message: "listening on :8888"}}
	assert.Equal(t, "[web-1] listening on :8888", l.Display())
}

func TestStreamOf(t *testing.T) {
	assert.Equal(t, StreamStatus, StreamOf(StatusChanged{}))
	assert.Equal(t, StreamLog, StreamOf(LogLine{}))
	assert.Equal(t, StreamTerminal, StreamOf(TerminalOutput{}))
	assert.Equal(t, StreamTerminal, StreamOf(TerminalConnected{}))
	assert.Equal(t, StreamTerminal, StreamOf(TerminalError{}))
	assert.Equal(t, StreamError, StreamOf(ChannelError{}))
	assert.Equal(t, "terminal", StreamTerminal.String())
}

func TestRouter_DispatchesByStream(t *testing.T) {
	r := New()

	var status, logs []Frame
	r.Listen(StreamStatus, func(f Frame) { status = append(status, f) })
	r.Listen(StreamLog, func(f Frame) { logs = append(logs, f) })

	r.HandleMessage(invocation(t, "PodStatusChanged", map[string]any{"podName": "a", "status": "Running"}))
	r.HandleMessage(invocation(t, "PodLog", "a", LogEntry{Message: "one"}))
	r.HandleMessage(invocation(t, "PodLog", "a", LogEntry{Message: "two"}))

	require.Len(t, status, 1)
	require.Len(t, logs, 2)
	assert.Equal(t, "one", logs[0].(LogLine).Entry.Message)
	assert.Equal(t, "two", logs[1].(LogLine).Entry.Message)

	m := r.Metrics()
	assert.Equal(t, int64(3), m.FramesPublished)
	assert.Equal(t, int64(3), m.FramesDelivered)
	assert.Equal(t, int64(2), m.FramesByStream[StreamLog])
	assert.Equal(t, 2, m.ActiveListeners)
}

func TestRouter_EachListenerOnce(t *testing.T) {
	r := New()
	var a, b int
	r.Listen(StreamTerminal, func(Frame) { a++ })
	r.Listen(StreamTerminal, func(Frame) { b++ })

	r.Dispatch(TerminalOutput{Text: "x"})
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}

func TestRouter_ListenerClose(t *testing.T) {
	r := New()
	var got int
	l := r.Listen(StreamStatus, func(Frame) { got++ })

	r.Dispatch(StatusChanged{})
	l.Close()
	r.Dispatch(StatusChanged{})
	l.Close()

	assert.Equal(t, 1, got)
	assert.Equal(t, 0, r.Metrics().ActiveListeners)
}

func TestRouter_CloseFromInsideHandler(t *testing.T) {
	r := New()
	var got int
	var l *Listener
	l = r.Listen(StreamTerminal, func(Frame) {
		got++
		l.Close()
	})
	r.Dispatch(TerminalOutput{})
	r.Dispatch(TerminalOutput{})
	assert.Equal(t, 1, got)
}

func TestRouter_PanickingListenerIsContained(t *testing.T) {
	r := New()
	var ok int
	r.Listen(StreamLog, func(Frame) { panic("boom") })
	r.Listen(StreamLog, func(Frame) { ok++ })

	assert.NotPanics(t, func() { r.Dispatch(LogLine{Pod: "a"}) })
	assert.NotPanics(t, func() { r.Dispatch(LogLine{Pod: "a"}) })
	assert.Equal(t, 2, ok)

	m := r.Metrics()
	assert.Equal(t, int64(2), m.FramesFailed)
	assert.Equal(t, int64(2), m.FramesDelivered)
}

func TestRouter_ListenChannel(t *testing.T) {
	r := New()
	ch, l := r.ListenChannel(StreamStatus, 1)

	r.Dispatch(StatusChanged{Update: StatusUpdate{Pod: "a"}})
	r.Dispatch(StatusChanged{Update: StatusUpdate{Pod: "b"}})

	f := <-ch
	assert.Equal(t, "a", f.(StatusChanged).Update.Pod)
	assert.Equal(t, int64(1), r.Metrics().FramesDropped)

	l.Close()
	_, open := <-ch
	assert.False(t, open)

	assert.NotPanics(t, func() { r.Dispatch(StatusChanged{}) })
}

func TestRouter_ConcurrentListenAndDispatch(t *testing.T) {
	r := New()
	var mu sync.Mutex
	count := 0

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l := r.Listen(StreamLog, func(Frame) {
				mu.Lock()
				count++
				mu.Unlock()
			})
			r.Dispatch(LogLine{})
			l.Close()
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, count, 10)
	assert.Equal(t, 0, r.Metrics().ActiveListeners)
}
