// Package task contains the Task aggregate: the work item entity, its
// status state machine, and the domain events its operations raise.
//
// Status never changes by direct assignment. Every lifecycle change goes
// through a named operation (Start, SubmitForReview, Complete, Cancel)
// that consults the transition table, applies side effects, and raises
// exactly one event.
package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/workstackhq/workstack/internal/domain"
)

// timeNow is the clock used for timestamps and event occurrence times.
// Overridable in tests.
var timeNow = time.Now

// Compile-time check that Task satisfies the aggregate contract.
var _ domain.Aggregate = (*Task)(nil)

// Task is a work item inside a project. A task may have a parent task, in
// which case it is a dependent: it must share the parent's project and may
// not itself have dependents (single-level nesting, enforced at creation).
type Task struct {
	ID             string
	ProjectID      string
	ParentID       *string
	Title          string
	Description    string
	Status         Status
	Priority       Priority
	AssigneeID     *string
	EstimatedHours float64
	ActualHours    float64
	DueAt          *time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int64

	rec domain.EventRecorder
}

// NewParams are the caller-supplied fields for creating a task.
type NewParams struct {
	ProjectID      string
	ParentID       *string
	Title          string
	Description    string
	Priority       Priority
	AssigneeID     *string
	EstimatedHours float64
	DueAt          *time.Time
}

// New creates a task in ToDo status and raises the Created event. The
// single-level-nesting invariant (parent shares the project and is itself
// parentless) is checked by the application service, which has access to
// the parent; New validates only the fields it can see.
func New(p NewParams, actor domain.Actor) (*Task, error) {
	if p.Priority == "" {
		p.Priority = PriorityMedium
	}
	now := timeNow().UTC()
	t := &Task{
		ID:             uuid.NewString(),
		ProjectID:      p.ProjectID,
		ParentID:       p.ParentID,
		Title:          p.Title,
		Description:    p.Description,
		Status:         StatusToDo,
		Priority:       p.Priority,
		AssigneeID:     p.AssigneeID,
		EstimatedHours: p.EstimatedHours,
		DueAt:          p.DueAt,
		CreatedAt:      now,
		UpdatedAt:      now,
		Version:        1,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.rec.Raise(Created{
		EventBase: domain.EventBase{At: now, ActorID: actor.ID},
		TaskID:    t.ID,
		ProjectID: t.ProjectID,
		ParentID:  t.ParentID,
		Title:     t.Title,
	})
	return t, nil
}

// Validate checks field-level rules for the Task entity. Returns a
// *domain.ValidationError (wrapping domain.ErrValidation) with per-field
// details, or nil if all rules pass.
func (t *Task) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(t.Title) == "" {
		fields["title"] = domain.MsgRequired
	}
	if strings.TrimSpace(t.ProjectID) == "" {
		fields["project_id"] = domain.MsgRequired
	}
	if !t.Status.IsValid() {
		fields["status"] = fmt.Sprintf("invalid: %q", t.Status)
	}
	if !t.Priority.IsValid() {
		fields["priority"] = fmt.Sprintf("invalid: %q", t.Priority)
	}
	if t.EstimatedHours < 0 {
		fields["estimated_hours"] = fmt.Sprintf("must not be negative, got %v", t.EstimatedHours)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// AggregateID implements domain.Aggregate.
func (t *Task) AggregateID() string { return t.ID }

// DrainEvents implements domain.Aggregate by delegating to the unexported
// event recorder. This is the only external access to the buffer.
func (t *Task) DrainEvents() []domain.Event { return t.rec.DrainEvents() }

// PendingEvents reports the number of undrained events.
func (t *Task) PendingEvents() int { return t.rec.PendingEvents() }

// Start moves the task to InProgress, from ToDo or back from InReview,
// recording the start time on first start only.
func (t *Task) Start(actor domain.Actor) error {
	if err := t.guard(actor, StatusInProgress); err != nil {
		return err
	}
	from := t.Status
	now := timeNow().UTC()
	t.Status = StatusInProgress
	if t.StartedAt == nil {
		t.StartedAt = &now
	}
	t.UpdatedAt = now
	t.rec.Raise(Started{t.statusChanged(from, t.Status, actor, now)})
	return nil
}

// ReturnToBacklog moves the task from InProgress back to ToDo. The start
// time is kept; a later Start will not overwrite it.
func (t *Task) ReturnToBacklog(actor domain.Actor) error {
	if err := t.guard(actor, StatusToDo); err != nil {
		return err
	}
	from := t.Status
	now := timeNow().UTC()
	t.Status = StatusToDo
	t.UpdatedAt = now
	t.rec.Raise(ReturnedToBacklog{t.statusChanged(from, t.Status, actor, now)})
	return nil
}

// SubmitForReview moves the task from InProgress to InReview.
func (t *Task) SubmitForReview(actor domain.Actor) error {
	if err := t.guard(actor, StatusInReview); err != nil {
		return err
	}
	from := t.Status
	now := timeNow().UTC()
	t.Status = StatusInReview
	t.UpdatedAt = now
	t.rec.Raise(SubmittedForReview{t.statusChanged(from, t.Status, actor, now)})
	return nil
}

// Complete moves the task to Done, stamping the completion time and
// recording the actual effort spent.
func (t *Task) Complete(actualHours float64, actor domain.Actor) error {
	if err := t.guard(actor, StatusDone); err != nil {
		return err
	}
	if actualHours < 0 {
		return &domain.ValidationError{Fields: map[string]string{
			"actual_hours": fmt.Sprintf("must not be negative, got %v", actualHours),
		}}
	}
	from := t.Status
	now := timeNow().UTC()
	t.Status = StatusDone
	t.CompletedAt = &now
	t.ActualHours = actualHours
	t.UpdatedAt = now
	t.rec.Raise(Completed{
		StatusChanged: t.statusChanged(from, t.Status, actor, now),
		ActualHours:   actualHours,
	})
	return nil
}

// Cancel moves the task to Cancelled. Cancel is legal from every
// non-terminal status, which is what makes the parent-to-dependent cascade
// all-or-nothing by construction: a non-terminal dependent can never
// refuse it.
func (t *Task) Cancel(actor domain.Actor) error {
	return t.cancel(actor, false)
}

// CancelCascaded is Cancel invoked on a dependent as part of cancelling its
// parent. The raised event is marked as cascaded.
func (t *Task) CancelCascaded(actor domain.Actor) error {
	return t.cancel(actor, true)
}

func (t *Task) cancel(actor domain.Actor, cascaded bool) error {
	if err := t.guard(actor, StatusCancelled); err != nil {
		return err
	}
	from := t.Status
	now := timeNow().UTC()
	t.Status = StatusCancelled
	t.UpdatedAt = now
	t.rec.Raise(Cancelled{
		StatusChanged: t.statusChanged(from, t.Status, actor, now),
		Cascaded:      cascaded,
	})
	return nil
}

// Assign sets or clears the assignee. Assignment is legal only while the
// task is in ToDo or InProgress, and only for actors whose role permits it.
// Raises one Assigned event carrying the previous and new assignee.
func (t *Task) Assign(assignee *string, actor domain.Actor) error {
	if !actor.Role.CanAssign() {
		return &domain.RuleViolationError{
			Entity: "task", ID: t.ID,
			Rule: fmt.Sprintf("role %q may not assign tasks", actor.Role),
		}
	}
	if t.Status != StatusToDo && t.Status != StatusInProgress {
		return &domain.RuleViolationError{
			Entity: "task", ID: t.ID,
			Rule: fmt.Sprintf("assignment is not allowed in status %q", t.Status),
		}
	}
	prev := t.AssigneeID
	now := timeNow().UTC()
	t.AssigneeID = assignee
	t.UpdatedAt = now
	t.rec.Raise(Assigned{
		EventBase: domain.EventBase{At: now, ActorID: actor.ID},
		TaskID:    t.ID,
		ProjectID: t.ProjectID,
		Previous:  prev,
		New:       assignee,
	})
	return nil
}

// UpdateParams are the optional metadata changes for Update. Nil means
// "do not change this field".
type UpdateParams struct {
	Title          *string
	Description    *string
	Priority       *Priority
	EstimatedHours *float64
	DueAt          *time.Time
}

// Update applies metadata changes. Terminal tasks reject all updates.
// Raises one Updated event naming the changed fields; a no-op update
// raises nothing.
func (t *Task) Update(p UpdateParams, actor domain.Actor) error {
	if !actor.Role.CanMutateTasks() {
		return &domain.RuleViolationError{
			Entity: "task", ID: t.ID,
			Rule: fmt.Sprintf("role %q may not modify tasks", actor.Role),
		}
	}
	if t.Status.IsTerminal() {
		return &domain.RuleViolationError{
			Entity: "task", ID: t.ID,
			Rule: fmt.Sprintf("cannot modify a task in terminal status %q", t.Status),
		}
	}

	var changed []string
	if p.Title != nil && *p.Title != t.Title {
		t.Title = *p.Title
		changed = append(changed, "title")
	}
	if p.Description != nil && *p.Description != t.Description {
		t.Description = *p.Description
		changed = append(changed, "description")
	}
	if p.Priority != nil && *p.Priority != t.Priority {
		t.Priority = *p.Priority
		changed = append(changed, "priority")
	}
	if p.EstimatedHours != nil && *p.EstimatedHours != t.EstimatedHours {
		t.EstimatedHours = *p.EstimatedHours
		changed = append(changed, "estimated_hours")
	}
	if p.DueAt != nil {
		t.DueAt = p.DueAt
		changed = append(changed, "due_at")
	}
	if len(changed) == 0 {
		return nil
	}
	if err := t.Validate(); err != nil {
		return err
	}

	now := timeNow().UTC()
	t.UpdatedAt = now
	t.rec.Raise(Updated{
		EventBase:     domain.EventBase{At: now, ActorID: actor.ID},
		TaskID:        t.ID,
		ProjectID:     t.ProjectID,
		ChangedFields: changed,
	})
	return nil
}

// guard checks the role gate and the transition table for a lifecycle
// operation targeting the given status.
func (t *Task) guard(actor domain.Actor, to Status) error {
	if !actor.Role.CanMutateTasks() {
		return &domain.RuleViolationError{
			Entity: "task", ID: t.ID,
			Rule: fmt.Sprintf("role %q may not modify tasks", actor.Role),
		}
	}
	if !CanTransition(t.Status, to) {
		return &domain.RuleViolationError{
			Entity: "task", ID: t.ID,
			Rule: fmt.Sprintf("illegal transition %s -> %s", t.Status, to),
		}
	}
	return nil
}

func (t *Task) statusChanged(from, to Status, actor domain.Actor, at time.Time) StatusChanged {
	return StatusChanged{
		EventBase: domain.EventBase{At: at, ActorID: actor.ID},
		TaskID:    t.ID,
		ProjectID: t.ProjectID,
		From:      from,
		To:        to,
	}
}
