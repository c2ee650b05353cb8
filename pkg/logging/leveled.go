package logging

import (
	"fmt"
	"strings"
)

// LeveledLogger adapts the subsystem logger to the key/value style used by
// HTTP client libraries (it satisfies retryablehttp.LeveledLogger).
type LeveledLogger struct {
	Subsystem string
}

// NewLeveledLogger returns a LeveledLogger tagged with subsystem.
func NewLeveledLogger(subsystem string) *LeveledLogger {
	return &LeveledLogger{Subsystem: subsystem}
}

func (l *LeveledLogger) Error(msg string, keysAndValues ...interface{}) {
	logInternal(LevelError, l.Subsystem, nil, "%s", withPairs(msg, keysAndValues))
}

func (l *LeveledLogger) Info(msg string, keysAndValues ...interface{}) {
	logInternal(LevelInfo, l.Subsystem, nil, "%s", withPairs(msg, keysAndValues))
}

// Debug is used by retry libraries for per-request chatter.
func (l *LeveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	logInternal(LevelDebug, l.Subsystem, nil, "%s", withPairs(msg, keysAndValues))
}

func (l *LeveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	logInternal(LevelWarn, l.Subsystem, nil, "%s", withPairs(msg, keysAndValues))
}

func withPairs(msg string, kv []interface{}) string {
	if len(kv) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		if i+1 < len(kv) {
			fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
		} else {
			fmt.Fprintf(&b, " %v", kv[i])
		}
	}
	return b.String()
}
