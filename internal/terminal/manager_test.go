package terminal

import (
	"context"
	"sync"
	"testing"

	"podctl/internal/hub"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type channelFactory struct {
	mu       sync.Mutex
	channels map[string][]*fakeChannel
	delivers map[string]func(hub.Message)
}

func newChannelFactory() *channelFactory {
	return &channelFactory{channels: map[string][]*fakeChannel{}, delivers: map[string]func(hub.Message){}}
}

func (f *channelFactory) build(pod string, deliver func(hub.Message)) Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := &fakeChannel{}
	f.channels[pod] = append(f.channels[pod], ch)
	f.delivers[pod] = deliver
	return ch
}

func TestManager_OneSessionPerPod(t *testing.T) {
	factory := newChannelFactory()
	m := NewManager(factory.build, "# ")
	ctx := context.Background()

	first, err := m.Open(ctx, "web-1", &recordingScreen{})
	require.NoError(t, err)
	second, err := m.Open(ctx, "web-1", &recordingScreen{})
	require.NoError(t, err)

	assert.Equal(t, Closed, first.State())
	assert.True(t, factory.channels["web-1"][0].closed)
	assert.Equal(t, Connecting, second.State())

	got, ok := m.Get("web-1")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, []string{"web-1"}, m.Pods())
}

func TestManager_FramesReachTheRightSession(t *testing.T) {
	factory := newChannelFactory()
	m := NewManager(factory.build, "# ")
	ctx := context.Background()

	screenA, screenB := &recordingScreen{}, &recordingScreen{}
	_, err := m.Open(ctx, "a", screenA)
	require.NoError(t, err)
	_, err = m.Open(ctx, "b", screenB)
	require.NoError(t, err)
	screenA.reset()
	screenB.reset()

	msg, err := hub.NewInvocation("Connected", "hello b")
	require.NoError(t, err)
	factory.delivers["b"](msg)

	assert.Empty(t, screenA.snapshot())
	assert.Equal(t, "hello b\r\n# ", screenB.text())
}

func TestManager_CloseAndCloseAll(t *testing.T) {
	factory := newChannelFactory()
	m := NewManager(factory.build, "")
	ctx := context.Background()

	a, err := m.Open(ctx, "a", &recordingScreen{})
	require.NoError(t, err)
	b, err := m.Open(ctx, "b", &recordingScreen{})
	require.NoError(t, err)

	require.NoError(t, m.Close("a"))
	assert.Equal(t, Closed, a.State())
	_, ok := m.Get("a")
	assert.False(t, ok)
	assert.NoError(t, m.Close("missing"))

	require.NoError(t, m.CloseAll())
	assert.Equal(t, Closed, b.State())
	assert.Empty(t, m.Pods())
}
