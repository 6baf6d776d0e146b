package pipeline

import (
	"context"

	appctx "github.com/workstackhq/workstack/internal/app/context"
	"github.com/workstackhq/workstack/internal/ports"
)

// Dispatch publishes the events raised during a successful command. It
// calls the next handler and, only when it returns without error, drains
// every aggregate tracked on the request context and hands the events to
// the dispatcher: drain order is track order, each aggregate's events in
// raise order. A failed handler dispatches nothing, and once the handler
// has succeeded the response is already decided, so subscriber failures
// stay inside the dispatcher.
func Dispatch[C, R any](dispatcher ports.Dispatcher) Stage[C, R] {
	return func(next Handler[C, R]) Handler[C, R] {
		return func(ctx context.Context, cmd C) (R, error) {
			res, err := next(ctx, cmd)
			if err != nil {
				return res, err
			}

			if rc, ok := appctx.From(ctx); ok {
				if evts := rc.DrainAll(); len(evts) > 0 {
					dispatcher.Dispatch(ctx, evts)
				}
			}
			return res, nil
		}
	}
}
