// Package dto provides HTTP request/response data transfer objects and
// RFC 9457 Problem Details error responses for the inbound HTTP adapter layer.
package dto

import (
	"time"

	"github.com/workstackhq/workstack/internal/domain/project"
	"github.com/workstackhq/workstack/internal/domain/task"
	"github.com/workstackhq/workstack/internal/ports"
)

// ProjectResponse represents a single project in HTTP responses.
type ProjectResponse struct {
	ID          string `json:"id"`
	TeamID      string `json:"team_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Archived    bool   `json:"archived"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	Version     int64  `json:"version"`
}

// ProjectListResponse represents a list of projects in HTTP responses.
type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
	Count    int               `json:"count"`
}

// ToProjectResponse converts a domain Project aggregate to an HTTP
// response DTO.
func ToProjectResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		TeamID:      p.TeamID,
		Name:        p.Name,
		Description: p.Description,
		Archived:    p.Archived,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
		Version:     p.Version,
	}
}

// ToProjectListResponse converts a slice of domain Project aggregates to
// an HTTP list response DTO.
func ToProjectListResponse(projects []*project.Project) ProjectListResponse {
	items := make([]ProjectResponse, len(projects))
	for i, p := range projects {
		items[i] = ToProjectResponse(p)
	}
	return ProjectListResponse{
		Projects: items,
		Count:    len(items),
	}
}

// TaskResponse represents a single task in HTTP responses.
type TaskResponse struct {
	ID             string  `json:"id"`
	ProjectID      string  `json:"project_id"`
	ParentID       *string `json:"parent_id,omitempty"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Status         string  `json:"status"`
	Priority       string  `json:"priority"`
	AssigneeID     *string `json:"assignee_id,omitempty"`
	EstimatedHours float64 `json:"estimated_hours"`
	ActualHours    float64 `json:"actual_hours"`
	DueAt          *string `json:"due_at,omitempty"`
	StartedAt      *string `json:"started_at,omitempty"`
	CompletedAt    *string `json:"completed_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
	Version        int64   `json:"version"`
}

// TaskListResponse represents a list of tasks in HTTP responses.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Count int            `json:"count"`
}

// ToTaskResponse converts a domain Task aggregate to an HTTP response DTO.
func ToTaskResponse(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:             t.ID,
		ProjectID:      t.ProjectID,
		ParentID:       t.ParentID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         t.Status.String(),
		Priority:       t.Priority.String(),
		AssigneeID:     t.AssigneeID,
		EstimatedHours: t.EstimatedHours,
		ActualHours:    t.ActualHours,
		DueAt:          formatTimePtr(t.DueAt),
		StartedAt:      formatTimePtr(t.StartedAt),
		CompletedAt:    formatTimePtr(t.CompletedAt),
		CreatedAt:      t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      t.UpdatedAt.Format(time.RFC3339),
		Version:        t.Version,
	}
}

// ToTaskListResponse converts a slice of domain Task aggregates to an
// HTTP list response DTO.
func ToTaskListResponse(tasks []*task.Task) TaskListResponse {
	items := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		items[i] = ToTaskResponse(t)
	}
	return TaskListResponse{
		Tasks: items,
		Count: len(items),
	}
}

// CancelTaskResponse represents the result of a cancel, including how
// many dependents were cancelled in the same operation.
type CancelTaskResponse struct {
	Task      TaskResponse `json:"task"`
	Cascaded  int          `json:"cascaded"`
	Cancelled int          `json:"cancelled"`
}

// ToCancelTaskResponse converts a cancelled task plus its cascade count
// to an HTTP response DTO. Cancelled counts the task itself.
func ToCancelTaskResponse(t *task.Task, cascaded int) CancelTaskResponse {
	return CancelTaskResponse{
		Task:      ToTaskResponse(t),
		Cascaded:  cascaded,
		Cancelled: cascaded + 1,
	}
}

// ProjectOverviewResponse represents one project's aggregated task counts.
type ProjectOverviewResponse struct {
	Project      ProjectResponse `json:"project"`
	TasksByState map[string]int  `json:"tasks_by_state"`
	OpenTasks    int             `json:"open_tasks"`
}

// OverviewResponse represents the full overview query result.
type OverviewResponse struct {
	Projects []ProjectOverviewResponse `json:"projects"`
	Count    int                       `json:"count"`
}

// ToOverviewResponse converts the overview read model to an HTTP
// response DTO.
func ToOverviewResponse(overviews []ports.ProjectOverview) OverviewResponse {
	items := make([]ProjectOverviewResponse, len(overviews))
	for i, ov := range overviews {
		byState := make(map[string]int, len(ov.TasksByState))
		for status, n := range ov.TasksByState {
			byState[status.String()] = n
		}
		items[i] = ProjectOverviewResponse{
			Project:      ToProjectResponse(ov.Project),
			TasksByState: byState,
			OpenTasks:    ov.OpenTasks,
		}
	}
	return OverviewResponse{
		Projects: items,
		Count:    len(items),
	}
}

// ActivityEntryResponse represents one activity feed entry.
type ActivityEntryResponse struct {
	ID          int64  `json:"id"`
	EventName   string `json:"event_name"`
	AggregateID string `json:"aggregate_id"`
	ProjectID   string `json:"project_id"`
	ActorID     string `json:"actor_id"`
	OccurredAt  string `json:"occurred_at"`
	Detail      string `json:"detail,omitempty"`
}

// ActivityListResponse represents a page of the activity feed, newest
// entries first.
type ActivityListResponse struct {
	Entries []ActivityEntryResponse `json:"entries"`
	Count   int                     `json:"count"`
}

// ToActivityListResponse converts activity entries to an HTTP list
// response DTO.
func ToActivityListResponse(entries []ports.ActivityEntry) ActivityListResponse {
	items := make([]ActivityEntryResponse, len(entries))
	for i, e := range entries {
		items[i] = ActivityEntryResponse{
			ID:          e.ID,
			EventName:   e.EventName,
			AggregateID: e.AggregateID,
			ProjectID:   e.ProjectID,
			ActorID:     e.ActorID,
			OccurredAt:  e.OccurredAt.Format(time.RFC3339),
			Detail:      e.Detail,
		}
	}
	return ActivityListResponse{
		Entries: items,
		Count:   len(items),
	}
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
