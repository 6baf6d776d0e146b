package pipeline

import (
	"context"
	"maps"

	"github.com/workstackhq/workstack/internal/domain"
)

// Rule checks one aspect of a command before the handler runs. It returns
// field-keyed problems for validation failures, or an error for checks
// that could not run at all (a store-consulting rule hitting a dead
// store). Problems from all rules are merged; any infrastructure error
// aborts immediately.
type Rule[C any] func(ctx context.Context, cmd C) (map[string]string, error)

// Validation runs the command's rule set. Any reported problem
// short-circuits the pipeline with a *domain.ValidationError carrying
// every field collected; the handler never runs and nothing is dispatched
// or timed.
func Validation[C, R any](rules ...Rule[C]) Stage[C, R] {
	return func(next Handler[C, R]) Handler[C, R] {
		return func(ctx context.Context, cmd C) (R, error) {
			var zero R

			fields := make(map[string]string)
			for _, rule := range rules {
				problems, err := rule(ctx, cmd)
				if err != nil {
					return zero, err
				}
				maps.Copy(fields, problems)
			}
			if len(fields) > 0 {
				return zero, &domain.ValidationError{Fields: fields}
			}

			return next(ctx, cmd)
		}
	}
}
