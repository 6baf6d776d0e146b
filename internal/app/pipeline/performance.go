package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/workstackhq/workstack/internal/platform/logging"
)

// Performance times the handler it wraps and warns when execution exceeds
// the threshold. It sits innermost so the measurement covers only the
// handler, never validation or dispatch. It never alters the result.
func Performance[C, R any](command string, threshold time.Duration) Stage[C, R] {
	return func(next Handler[C, R]) Handler[C, R] {
		return func(ctx context.Context, cmd C) (R, error) {
			start := time.Now()
			res, err := next(ctx, cmd)
			elapsed := time.Since(start)

			if threshold > 0 && elapsed > threshold {
				logging.FromContext(ctx).WarnContext(ctx, "slow command",
					slog.String("command", command),
					slog.Duration("elapsed", elapsed),
					slog.Duration("threshold", threshold),
				)
			}
			return res, err
		}
	}
}
