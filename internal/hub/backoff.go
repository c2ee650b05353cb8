package hub

import "time"

// BackoffSchedule is the ordered table of delays between reconnection
// attempts. Attempts past the end reuse the last entry.
type BackoffSchedule []time.Duration

// DefaultBackoffSchedule matches the hub server's reconnect expectations.
var DefaultBackoffSchedule = BackoffSchedule{
	0,
	2 * time.Second,
	5 * time.Second,
	10 * time.Second,
	30 * time.Second,
}

// Delay returns the delay before attempt (zero-based), clamped to the table.
func (s BackoffSchedule) Delay(attempt int) time.Duration {
	if len(s) == 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= len(s) {
		return s[len(s)-1]
	}
	return s[attempt]
}
