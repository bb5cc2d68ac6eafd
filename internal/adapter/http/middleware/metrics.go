package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// RequestObserver receives one observation per HTTP request.
type RequestObserver interface {
	RequestStarted()
	RequestFinished(method, path string, status int, duration time.Duration)
}

// Metrics returns a middleware that records HTTP metrics on obs.
func Metrics(obs RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			obs.RequestStarted()

			// Wrap response writer to capture status code
			wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			obs.RequestFinished(r.Method, routeLabel(r), wrapped.statusCode, time.Since(start))
		})
	}
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// routeLabel prefers the matched chi pattern and falls back to normalizePath.
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" && pattern != "/*" {
			return pattern
		}
	}
	return normalizePath(r.URL.Path)
}

// identified lists path segments followed by an identifier.
var identified = map[string]string{
	"accounts":      ":code",
	"pieces":        ":piece",
	"bank-accounts": ":account",
	"lettrages":     ":lettrage",
}

// normalizePath normalizes URL paths to avoid high cardinality.
// /api/v1/accounts/401000/ledger -> /api/v1/accounts/:code/ledger
func normalizePath(path string) string {
	parts := strings.Split(path, "/")
	for i := 1; i < len(parts); i++ {
		if placeholder, ok := identified[parts[i-1]]; ok && parts[i] != "" {
			parts[i] = placeholder
		}
	}
	return strings.Join(parts, "/")
}
