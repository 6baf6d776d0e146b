// Package pipeline implements the command pipeline every state-changing
// operation runs through: a generic handler type and composable stages for
// logging, validation, post-commit event dispatch, and timing.
//
// Stages compose like HTTP middleware. The first stage passed to Chain is
// the outermost:
//
//	h := pipeline.Chain(handler,
//		pipeline.Logging[C, R]("task.create"),
//		pipeline.Validation[C, R](rules...),
//		pipeline.Dispatch[C, R](dispatcher),
//		pipeline.Performance[C, R]("task.create", threshold),
//	)
//
// With that order a validation failure short-circuits before dispatch and
// timing, dispatch runs only when the handler committed, and the timer
// wraps nothing but the handler itself.
package pipeline

import "context"

// Handler executes one command and returns its result. Handlers are pure
// orchestration: load, mutate aggregates, persist.
type Handler[C, R any] func(ctx context.Context, cmd C) (R, error)

// Stage wraps a Handler with cross-cutting behavior.
type Stage[C, R any] func(next Handler[C, R]) Handler[C, R]

// Chain composes stages around a handler. The first stage is the
// outermost: Chain(h, a, b) means a(b(h)). Chains are assembled once per
// command at service construction, not per call.
func Chain[C, R any](h Handler[C, R], stages ...Stage[C, R]) Handler[C, R] {
	for i := len(stages) - 1; i >= 0; i-- {
		h = stages[i](h)
	}
	return h
}
