package wsserver

import (
	"crypto/rand"
	"encoding/base32"
	"io"
)

// correlationEncoding is standard base32 (RFC 4648, A-Z 2-7) without padding,
// safe to drop into a log line unquoted.
var correlationEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// newCorrelationID returns a short random token used only to tie together
// the handful of log lines one coalescer run emits (start, flush errors,
// stream-ended) without repeating the full session id on every line.
func newCorrelationID() string {
	b := make([]byte, 5)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		panic("wsserver: failed to read random bytes: " + err.Error())
	}
	return correlationEncoding.EncodeToString(b)
}
