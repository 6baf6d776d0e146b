package task

import "github.com/workstackhq/workstack/internal/domain"

// Event names used for subscriber registration.
const (
	EventCreated            = "task.created"
	EventStarted            = "task.started"
	EventReturnedToBacklog  = "task.returned_to_backlog"
	EventSubmittedForReview = "task.submitted_for_review"
	EventCompleted          = "task.completed"
	EventCancelled          = "task.cancelled"
	EventAssigned           = "task.assigned"
	EventUpdated            = "task.updated"
)

// Created is raised once by the factory when a task enters the system.
type Created struct {
	domain.EventBase
	TaskID    string
	ProjectID string
	ParentID  *string
	Title     string
}

// EventName implements domain.Event.
func (Created) EventName() string { return EventCreated }

// StatusChanged carries the fields every lifecycle transition event shares:
// the old and new status at the moment of the change.
type StatusChanged struct {
	domain.EventBase
	TaskID    string
	ProjectID string
	From      Status
	To        Status
}

// Started is raised by Start, both for the first start (ToDo -> InProgress)
// and for resuming work after review feedback (InReview -> InProgress).
type Started struct{ StatusChanged }

// EventName implements domain.Event.
func (Started) EventName() string { return EventStarted }

// ReturnedToBacklog is raised by ReturnToBacklog (InProgress -> ToDo).
type ReturnedToBacklog struct{ StatusChanged }

// EventName implements domain.Event.
func (ReturnedToBacklog) EventName() string { return EventReturnedToBacklog }

// SubmittedForReview is raised by SubmitForReview (InProgress -> InReview).
type SubmittedForReview struct{ StatusChanged }

// EventName implements domain.Event.
func (SubmittedForReview) EventName() string { return EventSubmittedForReview }

// Completed is raised by Complete. It carries the actual effort recorded at
// completion time.
type Completed struct {
	StatusChanged
	ActualHours float64
}

// EventName implements domain.Event.
func (Completed) EventName() string { return EventCompleted }

// Cancelled is raised by Cancel, both for the task the caller named and for
// each dependent cancelled by the cascade.
type Cancelled struct {
	StatusChanged
	Cascaded bool // true when this cancellation was propagated from a parent
}

// EventName implements domain.Event.
func (Cancelled) EventName() string { return EventCancelled }

// Assigned is raised by Assign. Previous and New are nil for the unassigned
// side of a change (nil -> value on first assignment, value -> nil on
// unassignment).
type Assigned struct {
	domain.EventBase
	TaskID    string
	ProjectID string
	Previous  *string
	New       *string
}

// EventName implements domain.Event.
func (Assigned) EventName() string { return EventAssigned }

// Updated is raised by Update for metadata changes (title, description,
// priority, estimate, due date).
type Updated struct {
	domain.EventBase
	TaskID        string
	ProjectID     string
	ChangedFields []string
}

// EventName implements domain.Event.
func (Updated) EventName() string { return EventUpdated }
