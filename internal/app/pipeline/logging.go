package pipeline

import (
	"context"
	"log/slog"

	"github.com/workstackhq/workstack/internal/platform/logging"
)

// Logging logs the start and outcome of every command invocation. It is
// the outermost stage and runs unconditionally; correlation attributes
// travel on the context logger installed by the HTTP middleware.
func Logging[C, R any](command string) Stage[C, R] {
	return func(next Handler[C, R]) Handler[C, R] {
		return func(ctx context.Context, cmd C) (R, error) {
			logger := logging.FromContext(ctx)

			logger.InfoContext(ctx, "command started",
				slog.String("command", command),
			)

			res, err := next(ctx, cmd)
			if err != nil {
				logger.WarnContext(ctx, "command failed",
					slog.String("command", command),
					slog.Any("error", err),
				)
				return res, err
			}

			logger.InfoContext(ctx, "command completed",
				slog.String("command", command),
			)
			return res, nil
		}
	}
}
