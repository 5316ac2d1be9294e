package session

import "time"

// msToDuration converts a caller-supplied millisecond timeout (the WebSocket
// reader always passes 1) into a time.Duration for PtySession.Read.
func msToDuration(ms int) time.Duration {
	if ms <= 0 {
		return time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}
