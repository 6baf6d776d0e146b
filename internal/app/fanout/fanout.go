// Package fanout runs a function over a slice with a bounded worker pool.
// The project overview query uses it to aggregate task counts across
// projects without issuing one sequential query per project.
package fanout

import (
	"context"
	"sync"
)

// Result holds the outcome for one input item. Exactly one of Value or Err
// is meaningful.
type Result[R any] struct {
	Value R
	Err   error
}

// Run applies fn to every item using at most workers goroutines and returns
// results in input order. It blocks until all items are accounted for.
//
// When ctx is canceled, items not yet picked up by a worker are recorded
// with ctx.Err() instead of being processed. An fn already running is not
// interrupted; it sees the canceled context and decides for itself.
//
// workers must be >= 1. An empty input yields an empty non-nil slice.
func Run[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, T) (R, error)) []Result[R] {
	if len(items) == 0 {
		return []Result[R]{}
	}
	if workers > len(items) {
		workers = len(items)
	}

	results := make([]Result[R], len(items))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					results[idx] = Result[R]{Err: err}
					continue
				}
				val, err := fn(ctx, items[idx])
				results[idx] = Result[R]{Value: val, Err: err}
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
