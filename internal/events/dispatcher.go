// Package events implements post-commit event delivery: the dispatcher
// that routes committed domain events to subscribers, and the subscribers
// shipped with the service (activity feed, webhook notifier).
//
// Delivery is at most once. The dispatcher runs on the request flow after
// the command has committed; it never fails the request. A crash between
// commit and dispatch loses the events, which is the accepted trade for
// keeping the store free of an outbox table.
package events

import (
	"context"
	"log/slog"

	"github.com/workstackhq/workstack/internal/domain"
	"github.com/workstackhq/workstack/internal/platform/logging"
	"github.com/workstackhq/workstack/internal/platform/telemetry"
	"github.com/workstackhq/workstack/internal/ports"
)

// Compile-time check that Dispatcher implements ports.Dispatcher.
var _ ports.Dispatcher = (*Dispatcher)(nil)

// Dispatcher routes events to subscribers by event name. Registration
// happens at startup before any dispatching; Dispatch only reads the
// subscription table, so concurrent requests may share one instance.
type Dispatcher struct {
	subs    map[string][]ports.Subscriber
	metrics *telemetry.Metrics
}

// NewDispatcher creates an empty dispatcher. Metrics may be nil, e.g. in
// tests.
func NewDispatcher(metrics *telemetry.Metrics) *Dispatcher {
	return &Dispatcher{
		subs:    make(map[string][]ports.Subscriber),
		metrics: metrics,
	}
}

// Register implements ports.Dispatcher. Not safe to call concurrently
// with Dispatch; wire all subscribers before serving traffic.
func (d *Dispatcher) Register(eventName string, sub ports.Subscriber) {
	d.subs[eventName] = append(d.subs[eventName], sub)
}

// Dispatch implements ports.Dispatcher. Events are delivered in slice
// order, one subscriber at a time in registration order. A subscriber
// error is logged with the event and subscriber identity and delivery
// continues; by this point the producing command has already succeeded,
// so nothing here can change the response.
func (d *Dispatcher) Dispatch(ctx context.Context, evts []domain.Event) {
	logger := logging.FromContext(ctx)

	for _, evt := range evts {
		for _, sub := range d.subs[evt.EventName()] {
			if err := sub.Handle(ctx, evt); err != nil {
				logger.ErrorContext(ctx, "subscriber failed",
					slog.String("event", evt.EventName()),
					slog.String("subscriber", sub.Name()),
					slog.Any("error", err),
				)
				d.count(ctx, evt.EventName(), sub.Name(), false)
				continue
			}
			d.count(ctx, evt.EventName(), sub.Name(), true)
		}
	}
}

func (d *Dispatcher) count(ctx context.Context, event, subscriber string, ok bool) {
	if d.metrics == nil {
		return
	}
	attrs := telemetry.EventAttributes(event, subscriber)
	d.metrics.EventsDispatched.Add(ctx, 1, attrs)
	if !ok {
		d.metrics.SubscriberFailures.Add(ctx, 1, attrs)
	}
}
