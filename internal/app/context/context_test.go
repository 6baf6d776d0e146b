package appctx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workstackhq/workstack/internal/domain"
)

type stubEvent struct {
	domain.EventBase
	name string
}

func (e stubEvent) EventName() string { return e.name }

type stubAggregate struct {
	id  string
	rec domain.EventRecorder
}

func (a *stubAggregate) AggregateID() string         { return a.id }
func (a *stubAggregate) DrainEvents() []domain.Event { return a.rec.DrainEvents() }
func (a *stubAggregate) raise(name string)           { a.rec.Raise(stubEvent{name: name}) }

func TestTrack(t *testing.T) {
	t.Run("same id tracked once, first order kept", func(t *testing.T) {
		rc := New()
		a := &stubAggregate{id: "a"}
		b := &stubAggregate{id: "b"}

		rc.Track(a)
		rc.Track(b)
		rc.Track(a)

		assert.Equal(t, 2, rc.Tracked())

		a.raise("a.changed")
		b.raise("b.changed")

		evts := rc.DrainAll()
		require.Len(t, evts, 2)
		assert.Equal(t, "a.changed", evts[0].EventName())
		assert.Equal(t, "b.changed", evts[1].EventName())
	})

	t.Run("drain is single consumer", func(t *testing.T) {
		rc := New()
		a := &stubAggregate{id: "a"}
		rc.Track(a)
		a.raise("a.changed")

		require.Len(t, rc.DrainAll(), 1)
		assert.Empty(t, rc.DrainAll())
	})

	t.Run("nil aggregate ignored", func(t *testing.T) {
		rc := New()
		rc.Track(nil)
		assert.Zero(t, rc.Tracked())
	})

	t.Run("via context helper", func(t *testing.T) {
		rc := New()
		ctx := With(context.Background(), rc)
		a := &stubAggregate{id: "a"}

		Track(ctx, a)
		assert.Equal(t, 1, rc.Tracked())

		// No RequestContext in context: silently a no-op.
		Track(context.Background(), a)
	})
}

func TestGetOrFetch(t *testing.T) {
	t.Run("memoizes values", func(t *testing.T) {
		ctx := With(context.Background(), New())
		calls := 0
		fetch := func(context.Context) (string, error) {
			calls++
			return "value", nil
		}

		v1, err := GetOrFetch(ctx, "k", fetch)
		require.NoError(t, err)
		v2, err := GetOrFetch(ctx, "k", fetch)
		require.NoError(t, err)

		assert.Equal(t, "value", v1)
		assert.Equal(t, "value", v2)
		assert.Equal(t, 1, calls)
	})

	t.Run("memoizes errors", func(t *testing.T) {
		ctx := With(context.Background(), New())
		wantErr := errors.New("boom")
		calls := 0

		for range 2 {
			_, err := GetOrFetch(ctx, "k", func(context.Context) (int, error) {
				calls++
				return 0, wantErr
			})
			assert.ErrorIs(t, err, wantErr)
		}
		assert.Equal(t, 1, calls)
	})

	t.Run("type mismatch", func(t *testing.T) {
		ctx := With(context.Background(), New())
		_, err := GetOrFetch(ctx, "k", func(context.Context) (string, error) { return "s", nil })
		require.NoError(t, err)

		_, err = GetOrFetch(ctx, "k", func(context.Context) (int, error) { return 1, nil })
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("without request context fetches directly", func(t *testing.T) {
		calls := 0
		for range 2 {
			v, err := GetOrFetch(context.Background(), "k", func(context.Context) (time.Duration, error) {
				calls++
				return time.Second, nil
			})
			require.NoError(t, err)
			assert.Equal(t, time.Second, v)
		}
		assert.Equal(t, 2, calls, "no memoization without a request context")
	})

	t.Run("invalidate forces refetch", func(t *testing.T) {
		rc := New()
		ctx := With(context.Background(), rc)
		calls := 0
		fetch := func(context.Context) (int, error) {
			calls++
			return calls, nil
		}

		v, _ := GetOrFetch(ctx, "k", fetch)
		assert.Equal(t, 1, v)

		rc.Invalidate("k")
		v, _ = GetOrFetch(ctx, "k", fetch)
		assert.Equal(t, 2, v)
	})
}
