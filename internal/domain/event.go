package domain

import "time"

// Event is an immutable record of a state change that already occurred
// inside an aggregate. Events are produced only as a side effect of an
// aggregate operation and carry the acting identity and the moment the
// change happened.
type Event interface {
	// EventName returns the stable name used for subscriber registration,
	// e.g. "task.started".
	EventName() string

	// OccurredAt returns when the change happened.
	OccurredAt() time.Time

	// Actor returns the identity that caused the change.
	Actor() string
}

// EventBase carries the fields every concrete event shares. Concrete event
// types embed it and add their change-specific payload.
type EventBase struct {
	At      time.Time
	ActorID string
}

// OccurredAt implements Event.
func (b EventBase) OccurredAt() time.Time { return b.At }

// Actor implements Event.
func (b EventBase) Actor() string { return b.ActorID }

// Aggregate is the view of an aggregate root that the request tracker and
// the dispatch stage operate on: an identity plus the drain side of the
// event buffer.
type Aggregate interface {
	// AggregateID returns the aggregate's identity.
	AggregateID() string

	// DrainEvents atomically returns and empties the aggregate's pending
	// event buffer. Order is raise order. A second drain with no
	// intervening raise returns an empty slice.
	DrainEvents() []Event
}

// EventRecorder is the per-aggregate pending-event buffer. Aggregates hold
// one in an unexported field and delegate DrainEvents to it, so Raise is
// reachable only from the aggregate's own package: external callers cannot
// forge events, and DrainEvents is the sole read path. The recorder is
// owned exclusively by one aggregate instance and is not safe for
// concurrent use, matching the one-request-one-aggregate-instance model.
type EventRecorder struct {
	pending []Event
}

// Raise appends an event to the pending buffer, preserving insertion order.
// Events are never reordered or deduplicated. Aggregates call this from
// their own state-changing operations only.
func (r *EventRecorder) Raise(evt Event) {
	r.pending = append(r.pending, evt)
}

// DrainEvents returns the buffered events in raise order and empties the
// buffer. Calling it twice with no intervening Raise yields an empty slice
// the second time.
func (r *EventRecorder) DrainEvents() []Event {
	evts := r.pending
	r.pending = nil
	return evts
}

// PendingEvents reports how many events are buffered without draining them.
func (r *EventRecorder) PendingEvents() int {
	return len(r.pending)
}
