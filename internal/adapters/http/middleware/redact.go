package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/workstackhq/workstack/internal/platform/logging"
)

// RedactHeaders converts request headers into slog attributes for the logging
// middleware. Headers in logging.SensitiveHeaders are replaced with
// "[REDACTED]" so credentials never reach the log stream; the set lives in
// the logging package so this filter and the masq handler agree on what is
// sensitive. Multi-value headers are joined with a comma.
func RedactHeaders(headers http.Header) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(headers))
	for key, vals := range headers {
		value := strings.Join(vals, ",")
		if logging.SensitiveHeaders[strings.ToLower(key)] {
			value = "[REDACTED]"
		}
		attrs = append(attrs, slog.String(key, value))
	}
	return attrs
}
