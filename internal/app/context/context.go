// Package appctx provides request-scoped context for orchestration services.
//
// RequestContext carries two things through one command flow: a memoization
// cache for data fetching, and the set of aggregate instances the handler
// touched. The dispatch stage drains the tracked aggregates after a
// successful commit to collect the events raised during the request.
//
// A new RequestContext is created per request and must not be shared
// between concurrent requests:
//
//	rc := appctx.New()
//	ctx = appctx.With(ctx, rc)
//
//	// Fetch data with memoization
//	tk, err := appctx.GetOrFetch(ctx, "task:123", fetchTask)
//
//	// Record that the handler mutated an aggregate
//	appctx.Track(ctx, tk)
//
//	// After commit: collect everything raised during the request
//	evts := rc.DrainAll()
package appctx

import (
	"context"
	"errors"
	"fmt"

	"github.com/workstackhq/workstack/internal/domain"
)

// ErrTypeMismatch is returned by GetOrFetch when a cached value's type does
// not match the requested type T. This indicates a programming error where
// the same cache key is used with different types.
var ErrTypeMismatch = errors.New("appctx: cached value type mismatch")

// RequestContext is the request-scoped carrier for fetch memoization and
// aggregate tracking.
//
// A RequestContext is strictly request-scoped: create a new instance for
// each request. It is NOT safe for concurrent use from multiple goroutines;
// one command flow owns it end to end.
type RequestContext struct {
	cache   map[string]cacheEntry
	tracked []domain.Aggregate
	seen    map[string]struct{}
}

// cacheEntry stores the result of a GetOrFetch call, including any error.
// Both successful results and errors are cached to prevent redundant calls
// within the same request.
type cacheEntry struct {
	value any
	err   error
}

// New creates an empty RequestContext.
func New() *RequestContext {
	return &RequestContext{
		cache: make(map[string]cacheEntry),
		seen:  make(map[string]struct{}),
	}
}

type ctxKey struct{}

// With returns a context carrying the RequestContext.
func With(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

// From extracts the RequestContext from the context, if present.
func From(ctx context.Context) (*RequestContext, bool) {
	rc, ok := ctx.Value(ctxKey{}).(*RequestContext)
	return rc, ok
}

// Track records an aggregate instance as touched by the current request.
// Tracking the same aggregate id again is a no-op; the first-track order is
// preserved for draining. Aggregates are tracked before the mutation is
// attempted or after, it makes no difference: only events actually raised
// end up in the drain.
func (rc *RequestContext) Track(agg domain.Aggregate) {
	if agg == nil {
		return
	}
	id := agg.AggregateID()
	if _, ok := rc.seen[id]; ok {
		return
	}
	rc.seen[id] = struct{}{}
	rc.tracked = append(rc.tracked, agg)
}

// Tracked reports how many distinct aggregates have been tracked.
func (rc *RequestContext) Tracked() int { return len(rc.tracked) }

// DrainAll drains every tracked aggregate in first-track order and returns
// the concatenated events, each aggregate's events in raise order. The
// aggregates' buffers are left empty; a second DrainAll with no further
// mutations returns nothing.
func (rc *RequestContext) DrainAll() []domain.Event {
	var all []domain.Event
	for _, agg := range rc.tracked {
		all = append(all, agg.DrainEvents()...)
	}
	return all
}

// Track records an aggregate on the RequestContext carried by ctx. Without
// a RequestContext it is a no-op, which keeps handlers usable from tests
// and tools that do not run the full pipeline.
func Track(ctx context.Context, agg domain.Aggregate) {
	if rc, ok := From(ctx); ok {
		rc.Track(agg)
	}
}

// GetOrFetch returns a cached value for the given key, or calls fetchFn to
// fetch and cache it. Both successful results and errors are cached to
// prevent redundant calls within the same request. Without a RequestContext
// in ctx the fetch runs directly, uncached.
//
// The same key must always be used with the same type T. If a cached value
// exists but its type does not match T, GetOrFetch returns ErrTypeMismatch.
//
// GetOrFetch is NOT safe for concurrent use. It is designed for sequential
// orchestration within a single request goroutine.
func GetOrFetch[T any](ctx context.Context, key string, fetchFn func(ctx context.Context) (T, error)) (T, error) {
	rc, ok := From(ctx)
	if !ok {
		return fetchFn(ctx)
	}

	if entry, ok := rc.cache[key]; ok {
		if entry.err != nil {
			var zero T
			return zero, entry.err
		}
		v, ok := entry.value.(T)
		if !ok {
			var zero T
			return zero, fmt.Errorf("%w: key %q holds %T, requested %T", ErrTypeMismatch, key, entry.value, zero)
		}
		return v, nil
	}

	val, err := fetchFn(ctx)
	rc.cache[key] = cacheEntry{value: val, err: err}
	return val, err
}

// Invalidate drops a memoized entry, forcing the next GetOrFetch for the
// key to hit the fetch function again. Used after a write changes the
// entity behind a key.
func (rc *RequestContext) Invalidate(key string) {
	delete(rc.cache, key)
}
