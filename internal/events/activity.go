package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/workstackhq/workstack/internal/domain"
	"github.com/workstackhq/workstack/internal/domain/project"
	"github.com/workstackhq/workstack/internal/domain/task"
	"github.com/workstackhq/workstack/internal/ports"
)

// Compile-time check that ActivitySubscriber implements ports.Subscriber.
var _ ports.Subscriber = (*ActivitySubscriber)(nil)

// ActivitySubscriber appends one activity row per event, building the
// per-project feed served by the activity endpoint. Register it for every
// event name.
type ActivitySubscriber struct {
	log ports.ActivityLog
}

// NewActivitySubscriber creates the subscriber over the given log.
func NewActivitySubscriber(log ports.ActivityLog) *ActivitySubscriber {
	return &ActivitySubscriber{log: log}
}

// Name implements ports.Subscriber.
func (s *ActivitySubscriber) Name() string { return "activity-feed" }

// Handle implements ports.Subscriber. The full event payload is kept as
// JSON in the detail column; aggregate and project ids are lifted into
// their own columns for querying.
func (s *ActivitySubscriber) Handle(ctx context.Context, evt domain.Event) error {
	entry := ports.ActivityEntry{
		EventName:  evt.EventName(),
		ActorID:    evt.Actor(),
		OccurredAt: evt.OccurredAt(),
	}
	entry.AggregateID, entry.ProjectID = eventRef(evt)

	detail, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encoding %s detail: %w", evt.EventName(), err)
	}
	entry.Detail = string(detail)

	return s.log.Append(ctx, entry)
}

// eventRef extracts the aggregate and project ids from the known event
// types. Unknown events land in the feed without ids rather than being
// dropped.
func eventRef(evt domain.Event) (aggregateID, projectID string) {
	switch e := evt.(type) {
	case task.Created:
		return e.TaskID, e.ProjectID
	case task.Started:
		return e.TaskID, e.ProjectID
	case task.ReturnedToBacklog:
		return e.TaskID, e.ProjectID
	case task.SubmittedForReview:
		return e.TaskID, e.ProjectID
	case task.Completed:
		return e.TaskID, e.ProjectID
	case task.Cancelled:
		return e.TaskID, e.ProjectID
	case task.Assigned:
		return e.TaskID, e.ProjectID
	case task.Updated:
		return e.TaskID, e.ProjectID
	case project.Created:
		return e.ProjectID, e.ProjectID
	case project.Renamed:
		return e.ProjectID, e.ProjectID
	case project.Updated:
		return e.ProjectID, e.ProjectID
	case project.Archived:
		return e.ProjectID, e.ProjectID
	default:
		return "", ""
	}
}

// EventNames lists every event name the service produces, in one place for
// wiring subscribers that want the full stream.
func EventNames() []string {
	return []string{
		task.EventCreated,
		task.EventStarted,
		task.EventReturnedToBacklog,
		task.EventSubmittedForReview,
		task.EventCompleted,
		task.EventCancelled,
		task.EventAssigned,
		task.EventUpdated,
		project.EventCreated,
		project.EventRenamed,
		project.EventUpdated,
		project.EventArchived,
	}
}
