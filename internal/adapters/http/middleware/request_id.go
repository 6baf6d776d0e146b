package middleware

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"

	"github.com/workstackhq/workstack/internal/platform/httpclient"
)

const headerRequestID = "X-Request-ID"

// requestIDKey keys request IDs in this package's context values. The
// httpclient package keeps its own key; each side reads only what it wrote.
type requestIDKey struct{}

// WithRequestID stores the request ID for this package and, through
// httpclient.WithRequestID, for outbound webhook calls so the X-Request-ID
// header follows the request downstream.
func WithRequestID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey{}, id)
	return httpclient.WithRequestID(ctx, id)
}

// RequestIDFromContext returns the stored request ID, or "" when absent.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// RequestID assigns every request an X-Request-ID. An ID supplied by the
// caller is kept; otherwise a fresh UUID v4 is minted. The ID lands in the
// request context and is echoed back as a response header.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(headerRequestID)
			if id == "" {
				id = generateID()
			}
			ctx := WithRequestID(r.Context(), id)
			w.Header().Set(headerRequestID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// generateID produces a UUID v4 string from crypto/rand. Byte 6 carries the
// version nibble (0100) and byte 8 the RFC 4122 variant bits (10).
func generateID() string {
	var uuid [16]byte
	_, _ = rand.Read(uuid[:])

	uuid[6] = (uuid[6] & 0x0f) | 0x40
	uuid[8] = (uuid[8] & 0x3f) | 0x80

	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		uuid[0:4], uuid[4:6], uuid[6:8], uuid[8:10], uuid[10:16])
}
