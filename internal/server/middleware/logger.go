// Package middleware holds chi middleware local to this service. Logger has
// no direct teacher counterpart (the original internal/server/middleware.Logger
// was never present in the retrieved source) and is written fresh in the
// zerolog idiom used throughout this codebase.
package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Logger logs one structured line per request: remote_addr, method, path,
// status, and duration_ms (§ SPEC_FULL "Logging format"). It is mounted on
// the REST router only; no session_id field is logged.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.Info().
			Str("remote_addr", r.RemoteAddr).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("request")
	})
}
