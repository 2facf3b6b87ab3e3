package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"contentflow/internal/tracer"
)

// Logging writes one line per request.
func Logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	log := logger.With().Str("component", "http").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			ev := log.Info()
			if rec.status >= http.StatusInternalServerError {
				ev = log.Error()
			}
			if id := tracer.TraceID(r.Context()); id != "" {
				ev = ev.Str("trace_id", id)
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Int("bytes", rec.bytes).
				Dur("took", time.Since(start)).
				Msg("request")
		})
	}
}
