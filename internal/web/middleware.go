package web

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
)

// instrumentRequests logs every request and feeds the request metrics.
func instrumentRequests(logger *log.Logger, metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			observer := &statusObserver{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(observer, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			elapsed := time.Since(started)
			metrics.observeRequest(r.Method, route, observer.status, elapsed)
			logger.Info("http request",
				"event", "http_request",
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"status", observer.status,
				"duration_ms", elapsed.Milliseconds(),
				"remote", r.RemoteAddr,
			)
		})
	}
}

type statusObserver struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (o *statusObserver) WriteHeader(status int) {
	if !o.wroteHeader {
		o.status = status
		o.wroteHeader = true
	}
	o.ResponseWriter.WriteHeader(status)
}

func (o *statusObserver) Write(p []byte) (int, error) {
	o.wroteHeader = true
	return o.ResponseWriter.Write(p)
}

func (o *statusObserver) Flush() {
	if flusher, ok := o.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func logRejection(logger *log.Logger, r *http.Request, operation, reason string) {
	logger.Warn("request rejected", "event", "http_request_rejected", "operation", operation, "method", r.Method, "path", r.URL.Path, "reason", reason, "remote", r.RemoteAddr)
}
