package ports

import (
	"context"
	"time"

	"github.com/workstackhq/workstack/internal/domain/project"
	"github.com/workstackhq/workstack/internal/domain/task"
)

// TaskFilter narrows a task listing. Nil fields do not filter.
type TaskFilter struct {
	ProjectID  *string
	Status     *task.Status
	AssigneeID *string
	Limit      int
	Offset     int
}

// TaskRepository is the persistence port for the Task aggregate.
//
// Update performs an optimistic version check: it writes only if the
// stored row still carries the version the entity was loaded with, then
// increments the version. A lost race returns domain.ErrConflict and the
// caller retries from a fresh read. Missing rows return domain.ErrNotFound.
type TaskRepository interface {
	Get(ctx context.Context, id string) (*task.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*task.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]*task.Task, error)
	ListChildren(ctx context.Context, parentID string) ([]*task.Task, error)
	Create(ctx context.Context, t *task.Task) error
	Update(ctx context.Context, t *task.Task) error
	Delete(ctx context.Context, id string) error
}

// ProjectFilter narrows a project listing.
type ProjectFilter struct {
	TeamID          *string
	IncludeArchived bool
	Limit           int
	Offset          int
}

// ProjectRepository is the persistence port for the Project aggregate.
// Update carries the same optimistic version semantics as TaskRepository.
type ProjectRepository interface {
	Get(ctx context.Context, id string) (*project.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]*project.Project, error)
	Create(ctx context.Context, p *project.Project) error
	Update(ctx context.Context, p *project.Project) error
	Delete(ctx context.Context, id string) error
}

// ActivityEntry is one row of the activity feed: a flattened record of a
// domain event, written by the activity subscriber and read back through
// the activity endpoint.
type ActivityEntry struct {
	ID          int64
	EventName   string
	AggregateID string
	ProjectID   string
	ActorID     string
	OccurredAt  time.Time
	Detail      string
}

// ActivityLog is the persistence port for the activity feed.
type ActivityLog interface {
	Append(ctx context.Context, entry ActivityEntry) error
	ListByProject(ctx context.Context, projectID string, limit int) ([]ActivityEntry, error)
}
