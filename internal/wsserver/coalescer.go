package wsserver

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/websoft9/sshbridge/internal/session"
	"github.com/websoft9/sshbridge/internal/sshx"
)

// pollTimeoutMs is the timeout passed to ReadFromPty on every iteration
// (§4.3: "the WebSocket reader uses timeout_ms = 1").
const pollTimeoutMs = 1

// flushByteCeiling and flushLatencyCeiling are the coalescer's two flush
// triggers. Neither is incidental — see SPEC_FULL.md's carried-forward
// "Coalescer design rationale" note.
const (
	flushByteCeiling    = 4096
	flushLatencyCeiling = 5 * time.Millisecond
	accumulatorCap      = 8 << 10
)

// runCoalescer is the reader task spawned per started PTY. It accumulates
// small output bursts and emits a single Output frame per flush, giving a
// 5ms latency floor with an opportunistic 4KiB coalescing ceiling.
func runCoalescer(ctx context.Context, sessionID string, manager *session.Manager, send func(controlFrame), log zerolog.Logger) {
	corrID := newCorrelationID()
	log = log.With().Str("coalescer", corrID).Logger()
	log.Debug().Str("session_id", sessionID).Msg("coalescer started")

	accumulator := make([]byte, 0, accumulatorCap)
	lastFlush := time.Now()

	flush := func() {
		if len(accumulator) == 0 {
			return
		}
		send(controlFrame{Type: ctrlOutput, SessionID: sessionID, Data: accumulator})
		accumulator = make([]byte, 0, accumulatorCap)
		lastFlush = time.Now()
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		default:
		}

		chunk, err := manager.ReadFromPty(sessionID, pollTimeoutMs)
		if err != nil {
			var serr *sshx.Error
			if errors.As(err, &serr) && (serr.Kind == sshx.KindPtyClosed || serr.Kind == sshx.KindPtyNotFound) {
				log.Debug().Str("session_id", sessionID).Msg("pty stream ended")
			} else {
				log.Error().Err(err).Str("session_id", sessionID).Msg("coalescer read failed")
			}
			flush()
			return
		}

		if len(chunk) > 0 {
			accumulator = append(accumulator, chunk...)
			if len(accumulator) >= flushByteCeiling || time.Since(lastFlush) >= flushLatencyCeiling {
				flush()
			}
			continue
		}

		// Empty read: a timeout, not an error.
		if len(accumulator) > 0 && time.Since(lastFlush) >= flushLatencyCeiling {
			flush()
		}
	}
}
