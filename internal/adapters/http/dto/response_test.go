package dto_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/workstackhq/workstack/internal/adapters/http/dto"
	"github.com/workstackhq/workstack/internal/domain/project"
	"github.com/workstackhq/workstack/internal/domain/task"
	"github.com/workstackhq/workstack/internal/ports"
)

var testTime = time.Date(2026, 2, 12, 15, 4, 5, 0, time.UTC)

func validTask() *task.Task {
	assignee := "user-dev"
	return &task.Task{
		ID:             "task-1",
		ProjectID:      "proj-1",
		Title:          "Ship the release",
		Description:    "cut, tag, announce",
		Status:         task.StatusInProgress,
		Priority:       task.PriorityHigh,
		AssigneeID:     &assignee,
		EstimatedHours: 8,
		StartedAt:      &testTime,
		CreatedAt:      testTime,
		UpdatedAt:      testTime,
		Version:        2,
	}
}

func validProject() *project.Project {
	return &project.Project{
		ID:        "proj-1",
		TeamID:    "team-1",
		Name:      "Platform",
		CreatedAt: testTime,
		UpdatedAt: testTime,
		Version:   1,
	}
}

func TestToTaskResponse(t *testing.T) {
	t.Parallel()

	got := dto.ToTaskResponse(validTask())

	if got.ID != "task-1" {
		t.Errorf("ID = %q, want %q", got.ID, "task-1")
	}
	if got.Status != "in_progress" {
		t.Errorf("Status = %q, want %q", got.Status, "in_progress")
	}
	if got.Priority != "high" {
		t.Errorf("Priority = %q, want %q", got.Priority, "high")
	}
	if got.AssigneeID == nil || *got.AssigneeID != "user-dev" {
		t.Errorf("AssigneeID = %v, want user-dev", got.AssigneeID)
	}
	if got.StartedAt == nil || *got.StartedAt != testTime.Format(time.RFC3339) {
		t.Errorf("StartedAt = %v, want %q", got.StartedAt, testTime.Format(time.RFC3339))
	}
	if got.CompletedAt != nil {
		t.Errorf("CompletedAt = %v, want nil", got.CompletedAt)
	}
	if got.Version != 2 {
		t.Errorf("Version = %d, want 2", got.Version)
	}
}

func TestToTaskResponse_OmitsNilTimestamps(t *testing.T) {
	t.Parallel()

	tk := validTask()
	tk.StartedAt = nil
	tk.AssigneeID = nil

	data, err := json.Marshal(dto.ToTaskResponse(tk))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for _, key := range []string{"started_at", "completed_at", "assignee_id", "parent_id"} {
		if _, ok := m[key]; ok {
			t.Errorf("key %q present in JSON, want omitted", key)
		}
	}
}

func TestToTaskListResponse(t *testing.T) {
	t.Parallel()

	got := dto.ToTaskListResponse([]*task.Task{validTask(), validTask()})
	if got.Count != 2 {
		t.Errorf("Count = %d, want 2", got.Count)
	}
	if len(got.Tasks) != 2 {
		t.Errorf("len(Tasks) = %d, want 2", len(got.Tasks))
	}

	empty := dto.ToTaskListResponse(nil)
	if empty.Count != 0 || empty.Tasks == nil {
		t.Errorf("empty list: Count = %d, Tasks = %v, want 0 and non-nil", empty.Count, empty.Tasks)
	}
}

func TestToProjectResponse(t *testing.T) {
	t.Parallel()

	got := dto.ToProjectResponse(validProject())
	if got.ID != "proj-1" {
		t.Errorf("ID = %q, want %q", got.ID, "proj-1")
	}
	if got.TeamID != "team-1" {
		t.Errorf("TeamID = %q, want %q", got.TeamID, "team-1")
	}
	if got.Archived {
		t.Error("Archived = true, want false")
	}
	if got.CreatedAt != testTime.Format(time.RFC3339) {
		t.Errorf("CreatedAt = %q, want %q", got.CreatedAt, testTime.Format(time.RFC3339))
	}
}

func TestToCancelTaskResponse(t *testing.T) {
	t.Parallel()

	tk := validTask()
	tk.Status = task.StatusCancelled

	got := dto.ToCancelTaskResponse(tk, 2)
	if got.Cascaded != 2 {
		t.Errorf("Cascaded = %d, want 2", got.Cascaded)
	}
	if got.Cancelled != 3 {
		t.Errorf("Cancelled = %d, want 3", got.Cancelled)
	}
	if got.Task.Status != "cancelled" {
		t.Errorf("Task.Status = %q, want %q", got.Task.Status, "cancelled")
	}
}

func TestToOverviewResponse(t *testing.T) {
	t.Parallel()

	got := dto.ToOverviewResponse([]ports.ProjectOverview{
		{
			Project: validProject(),
			TasksByState: map[task.Status]int{
				task.StatusToDo: 3,
				task.StatusDone: 1,
			},
			OpenTasks: 3,
		},
	})

	if got.Count != 1 {
		t.Fatalf("Count = %d, want 1", got.Count)
	}
	ov := got.Projects[0]
	if ov.TasksByState["todo"] != 3 {
		t.Errorf("TasksByState[todo] = %d, want 3", ov.TasksByState["todo"])
	}
	if ov.TasksByState["done"] != 1 {
		t.Errorf("TasksByState[done] = %d, want 1", ov.TasksByState["done"])
	}
	if ov.OpenTasks != 3 {
		t.Errorf("OpenTasks = %d, want 3", ov.OpenTasks)
	}
}

func TestToActivityListResponse(t *testing.T) {
	t.Parallel()

	got := dto.ToActivityListResponse([]ports.ActivityEntry{
		{
			ID:          7,
			EventName:   "task.completed",
			AggregateID: "task-1",
			ProjectID:   "proj-1",
			ActorID:     "user-dev",
			OccurredAt:  testTime,
			Detail:      `{"ActualHours":4}`,
		},
	})

	if got.Count != 1 {
		t.Fatalf("Count = %d, want 1", got.Count)
	}
	e := got.Entries[0]
	if e.EventName != "task.completed" {
		t.Errorf("EventName = %q, want %q", e.EventName, "task.completed")
	}
	if e.OccurredAt != testTime.Format(time.RFC3339) {
		t.Errorf("OccurredAt = %q, want %q", e.OccurredAt, testTime.Format(time.RFC3339))
	}
}
