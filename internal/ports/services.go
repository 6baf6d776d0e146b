package ports

import (
	"context"
	"time"

	"github.com/workstackhq/workstack/internal/domain"
	"github.com/workstackhq/workstack/internal/domain/project"
	"github.com/workstackhq/workstack/internal/domain/task"
)

// CreateTaskParams are the caller-supplied fields for creating a task.
type CreateTaskParams struct {
	ProjectID      string
	ParentID       *string
	Title          string
	Description    string
	Priority       task.Priority
	AssigneeID     *string
	EstimatedHours float64
	DueAt          *time.Time
}

// TaskService is the application port for task commands and queries.
// Every mutation runs through the command pipeline: validation first,
// then the handler, then event dispatch on success.
type TaskService interface {
	Create(ctx context.Context, params CreateTaskParams, actor domain.Actor) (*task.Task, error)
	Get(ctx context.Context, id string) (*task.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*task.Task, error)
	Update(ctx context.Context, id string, params task.UpdateParams, actor domain.Actor) (*task.Task, error)
	Start(ctx context.Context, id string, actor domain.Actor) (*task.Task, error)
	ReturnToBacklog(ctx context.Context, id string, actor domain.Actor) (*task.Task, error)
	SubmitForReview(ctx context.Context, id string, actor domain.Actor) (*task.Task, error)
	Complete(ctx context.Context, id string, actualHours float64, actor domain.Actor) (*task.Task, error)
	// Cancel cancels the task and every non-terminal dependent, returning
	// the cancelled task and the number of dependents cancelled with it.
	Cancel(ctx context.Context, id string, actor domain.Actor) (*task.Task, int, error)
	Assign(ctx context.Context, id string, assignee *string, actor domain.Actor) (*task.Task, error)
}

// CreateProjectParams are the caller-supplied fields for creating a project.
type CreateProjectParams struct {
	TeamID      string
	Name        string
	Description string
}

// UpdateProjectParams are the optional changes for a project. Nil means
// "do not change this field".
type UpdateProjectParams struct {
	Name        *string
	Description *string
}

// ProjectOverview is the aggregated read model returned by the overview
// query: one project plus its task counts by status.
type ProjectOverview struct {
	Project      *project.Project
	TasksByState map[task.Status]int
	OpenTasks    int
}

// ProjectService is the application port for project commands and queries.
type ProjectService interface {
	Create(ctx context.Context, params CreateProjectParams, actor domain.Actor) (*project.Project, error)
	Get(ctx context.Context, id string) (*project.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]*project.Project, error)
	Update(ctx context.Context, id string, params UpdateProjectParams, actor domain.Actor) (*project.Project, error)
	Archive(ctx context.Context, id string, actor domain.Actor) (*project.Project, error)
	Tasks(ctx context.Context, projectID string) ([]*task.Task, error)
	// Overview fans out one task listing per project and aggregates the
	// results; partial failures surface as an error.
	Overview(ctx context.Context) ([]ProjectOverview, error)
}

// ActivityService is the application port for the activity feed.
type ActivityService interface {
	ListByProject(ctx context.Context, projectID string, limit int) ([]ActivityEntry, error)
}
