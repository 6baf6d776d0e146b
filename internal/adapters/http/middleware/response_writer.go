// Package middleware provides the inbound HTTP middleware stack: recovery,
// request and correlation IDs, OpenTelemetry, logging, request timeouts, and
// actor identity extraction. Each middleware is a func(http.Handler)
// http.Handler; compose them with Chain or register them on the router.
package middleware

import "net/http"

// responseWriter records the status code and body size on the way through so
// that recovery, otel, and logging middleware can report them.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
	bytes       int64
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// WriteHeader records the code on the first call; later calls are dropped,
// matching net/http's superfluous-WriteHeader behavior without the log noise.
func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += int64(n)
	return n, err
}

// Unwrap exposes the wrapped writer for http.ResponseController and for
// http.Flusher/http.Hijacker assertions.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
