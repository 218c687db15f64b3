package middleware

import (
	"net/http"
	"time"
)

// RequestObserver records served requests. metrics.Metrics implements it.
type RequestObserver interface {
	ObserveRequest(method string, status int, d time.Duration)
}

// Instrument reports method, status and latency of every request to observer.
func Instrument(observer RequestObserver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		observer.ObserveRequest(r.Method, wrapped.status, time.Since(start))
	})
}
