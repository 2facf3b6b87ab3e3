package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"contentflow/internal/metrics"
)

// Metrics records request counts and latency per route.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)

		path := routeLabel(r.URL.Path)
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// routeLabel keeps label cardinality bounded.
func routeLabel(p string) string {
	switch {
	case strings.HasPrefix(p, "/contentflow.v1."):
		return p
	case strings.HasPrefix(p, "/assets/"):
		return "/assets"
	case p == "/ws/assistant", p == "/healthz", p == "/metrics", p == "/debug/frontend-trace":
		return p
	}
	return "other"
}

// Chain applies middlewares so the first one is outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
