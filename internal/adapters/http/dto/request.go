package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/workstackhq/workstack/internal/domain"
	"github.com/workstackhq/workstack/internal/domain/task"
	"github.com/workstackhq/workstack/internal/ports"
)

const (
	msgRequired     = "is required"
	msgMustNotEmpty = "must not be empty"
)

// CreateProjectRequest represents the JSON body for creating a new project.
type CreateProjectRequest struct {
	TeamID      string `json:"team_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Validate checks that required fields are present.
// Returns a *domain.ValidationError if any checks fail.
func (r *CreateProjectRequest) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(r.TeamID) == "" {
		fields["team_id"] = msgRequired
	}
	if strings.TrimSpace(r.Name) == "" {
		fields["name"] = msgRequired
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// Params converts the request to service parameters.
func (r *CreateProjectRequest) Params() ports.CreateProjectParams {
	return ports.CreateProjectParams{
		TeamID:      r.TeamID,
		Name:        r.Name,
		Description: r.Description,
	}
}

// UpdateProjectRequest represents the JSON body for updating an existing
// project. All fields are optional; nil means "do not change this field".
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Validate checks that any provided fields have valid values.
// Returns a *domain.ValidationError if any checks fail.
func (r *UpdateProjectRequest) Validate() error {
	fields := make(map[string]string)

	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		fields["name"] = msgMustNotEmpty
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// Params converts the request to service parameters.
func (r *UpdateProjectRequest) Params() ports.UpdateProjectParams {
	return ports.UpdateProjectParams{
		Name:        r.Name,
		Description: r.Description,
	}
}

// CreateTaskRequest represents the JSON body for creating a new task.
type CreateTaskRequest struct {
	ProjectID      string     `json:"project_id"`
	ParentID       *string    `json:"parent_id,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Priority       string     `json:"priority,omitempty"`
	AssigneeID     *string    `json:"assignee_id,omitempty"`
	EstimatedHours float64    `json:"estimated_hours,omitempty"`
	DueAt          *time.Time `json:"due_at,omitempty"`
}

// Validate checks that required fields are present and optional fields
// have valid values. Returns a *domain.ValidationError if any checks fail.
func (r *CreateTaskRequest) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(r.ProjectID) == "" {
		fields["project_id"] = msgRequired
	}
	if strings.TrimSpace(r.Title) == "" {
		fields["title"] = msgRequired
	}
	if r.Priority != "" && !task.Priority(r.Priority).IsValid() {
		fields["priority"] = fmt.Sprintf("invalid: %q", r.Priority)
	}
	if r.EstimatedHours < 0 {
		fields["estimated_hours"] = "must not be negative"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// Params converts the request to service parameters. An absent priority
// stays empty; the aggregate factory applies the default.
func (r *CreateTaskRequest) Params() ports.CreateTaskParams {
	return ports.CreateTaskParams{
		ProjectID:      r.ProjectID,
		ParentID:       r.ParentID,
		Title:          r.Title,
		Description:    r.Description,
		Priority:       task.Priority(r.Priority),
		AssigneeID:     r.AssigneeID,
		EstimatedHours: r.EstimatedHours,
		DueAt:          r.DueAt,
	}
}

// UpdateTaskRequest represents the JSON body for updating an existing
// task. All fields are optional; nil means "do not change this field".
type UpdateTaskRequest struct {
	Title          *string    `json:"title,omitempty"`
	Description    *string    `json:"description,omitempty"`
	Priority       *string    `json:"priority,omitempty"`
	EstimatedHours *float64   `json:"estimated_hours,omitempty"`
	DueAt          *time.Time `json:"due_at,omitempty"`
}

// Validate checks that any provided fields have valid values.
// Returns a *domain.ValidationError if any checks fail.
func (r *UpdateTaskRequest) Validate() error {
	fields := make(map[string]string)

	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		fields["title"] = msgMustNotEmpty
	}
	if r.Priority != nil && !task.Priority(*r.Priority).IsValid() {
		fields["priority"] = fmt.Sprintf("invalid: %q", *r.Priority)
	}
	if r.EstimatedHours != nil && *r.EstimatedHours < 0 {
		fields["estimated_hours"] = "must not be negative"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// Params converts the request to domain update parameters.
func (r *UpdateTaskRequest) Params() task.UpdateParams {
	params := task.UpdateParams{
		Title:          r.Title,
		Description:    r.Description,
		EstimatedHours: r.EstimatedHours,
		DueAt:          r.DueAt,
	}
	if r.Priority != nil {
		p := task.Priority(*r.Priority)
		params.Priority = &p
	}
	return params
}

// CompleteTaskRequest represents the JSON body for completing a task.
type CompleteTaskRequest struct {
	ActualHours float64 `json:"actual_hours"`
}

// Validate checks that the reported effort is non-negative.
func (r *CompleteTaskRequest) Validate() error {
	if r.ActualHours < 0 {
		return &domain.ValidationError{Fields: map[string]string{
			"actual_hours": "must not be negative",
		}}
	}
	return nil
}

// AssignTaskRequest represents the JSON body for assigning a task.
// A null or absent assignee_id unassigns the task.
type AssignTaskRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

// Validate checks that a provided assignee id is not blank.
func (r *AssignTaskRequest) Validate() error {
	if r.AssigneeID != nil && strings.TrimSpace(*r.AssigneeID) == "" {
		return &domain.ValidationError{Fields: map[string]string{
			"assignee_id": msgMustNotEmpty,
		}}
	}
	return nil
}
