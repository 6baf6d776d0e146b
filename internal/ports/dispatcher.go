package ports

import (
	"context"

	"github.com/workstackhq/workstack/internal/domain"
)

// Subscriber consumes domain events after the producing command has
// committed. Subscribers run sequentially on the request flow; a returned
// error is logged by the dispatcher and never affects the response.
type Subscriber interface {
	// Name identifies the subscriber in failure logs.
	Name() string

	// Handle processes one event. Implementations should respect context
	// cancellation; once dispatch has begun, delivery is at most once.
	Handle(ctx context.Context, evt domain.Event) error
}

// Dispatcher routes committed events to registered subscribers.
type Dispatcher interface {
	// Register subscribes to an event name. Multiple subscribers per name
	// are delivered in registration order.
	Register(eventName string, sub Subscriber)

	// Dispatch delivers the events in order, one subscriber at a time.
	// Subscriber failures are logged, not returned.
	Dispatch(ctx context.Context, evts []domain.Event)
}
