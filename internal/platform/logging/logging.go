// Package logging builds the service's slog loggers and carries them through
// contexts.
//
//	logger := logging.New("info", "json", os.Stderr)
//
// The logging middleware enriches a child logger with request metadata and
// stores it with WithLogger; anything downstream picks it up again with
// FromContext. Error logs should name the operation, include entity IDs, and
// attach the error chain:
//
//	logger.ErrorContext(ctx, "failed to fetch task",
//	    slog.String("operation", "GetTask"),
//	    slog.String("task_id", id),
//	    slog.Any("error", err),
//	)
//
// All handlers run every attribute through the masq redaction layer, so
// credentials that slip into log fields never reach the output.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

type contextKey struct{}

// New builds a *slog.Logger. Level is one of debug, info, warn, error
// (anything else means info); format "text" selects the text handler,
// everything else JSON. Debug level also turns on source locations.
func New(level, format string, w io.Writer) *slog.Logger {
	lvl := parseLevel(level)

	opts := &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   lvl == slog.LevelDebug,
		ReplaceAttr: newRedactAttr(),
	}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

// WithLogger stores the logger in the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the context's logger, or slog.Default() when none was
// stored.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
