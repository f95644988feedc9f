package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// DiagnosticRateLimit returns a coarse per-IP limiter for diagnostic
// endpoints. These routes sit outside the admission controller's
// sliding-window table, so they get a simple fixed-window guard
// instead.
func DiagnosticRateLimit(requestsPerMinute int) func(next http.Handler) http.Handler {
	return httprate.Limit(
		requestsPerMinute,
		1*time.Minute,
		httprate.WithKeyByRealIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"Too many requests. Please try again later."}`))
		}),
	)
}
