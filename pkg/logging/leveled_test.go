package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeveledLogger_Pairs(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelDebug, &buf)

	l := NewLeveledLogger("PodAPI")
	l.Debug("performing request", "method", "GET", "url", "http://x/api/pods")
	l.Warn("odd", "dangling")

	out := buf.String()
	assert.Contains(t, out, "performing request method=GET url=http://x/api/pods")
	assert.Contains(t, out, "odd dangling")
	assert.Contains(t, out, "subsystem=PodAPI")
}

func TestWithPairs_NoPairs(t *testing.T) {
	assert.Equal(t, "plain", withPairs("plain", nil))
}
