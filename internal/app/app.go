// Package app contains the application services. Each state-changing
// operation is a command assembled once at construction from the pipeline
// stages; queries go straight to the repositories.
package app

import (
	"time"

	"github.com/workstackhq/workstack/internal/app/pipeline"
	"github.com/workstackhq/workstack/internal/ports"
)

// newCommand assembles the standard stage stack around a handler:
// logging outermost, then validation, then post-commit dispatch, with
// the timer wrapping nothing but the handler.
func newCommand[C, R any](
	name string,
	dispatcher ports.Dispatcher,
	slow time.Duration,
	h pipeline.Handler[C, R],
	rules ...pipeline.Rule[C],
) pipeline.Handler[C, R] {
	return pipeline.Chain(h,
		pipeline.Logging[C, R](name),
		pipeline.Validation[C, R](rules...),
		pipeline.Dispatch[C, R](dispatcher),
		pipeline.Performance[C, R](name, slow),
	)
}
