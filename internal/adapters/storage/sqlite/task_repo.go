package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/workstackhq/workstack/internal/domain"
	"github.com/workstackhq/workstack/internal/domain/task"
	"github.com/workstackhq/workstack/internal/ports"
)

// Compile-time check that TaskRepo implements ports.TaskRepository.
var _ ports.TaskRepository = (*TaskRepo)(nil)

// TaskRepo persists Task aggregates.
type TaskRepo struct {
	store *Store
}

// NewTaskRepo creates the repository over an open store.
func NewTaskRepo(store *Store) *TaskRepo {
	return &TaskRepo{store: store}
}

const taskColumns = `id, project_id, parent_id, title, description, status, priority,
assignee_id, estimated_hours, actual_hours, due_at, started_at, completed_at,
created_at, updated_at, version`

// Get implements ports.TaskRepository.
func (r *TaskRepo) Get(ctx context.Context, id string) (*task.Task, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading task %s: %w", id, err)
	}
	return t, nil
}

// List implements ports.TaskRepository.
func (r *TaskRepo) List(ctx context.Context, filter ports.TaskFilter) ([]*task.Task, error) {
	var (
		conds []string
		args  []any
	)
	if filter.ProjectID != nil {
		conds = append(conds, "project_id = ?")
		args = append(args, *filter.ProjectID)
	}
	if filter.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.AssigneeID != nil {
		conds = append(conds, "assignee_id = ?")
		args = append(args, *filter.AssigneeID)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	return r.queryTasks(ctx, query, args...)
}

// ListByProject implements ports.TaskRepository.
func (r *TaskRepo) ListByProject(ctx context.Context, projectID string) ([]*task.Task, error) {
	return r.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = ? ORDER BY created_at, id`,
		projectID)
}

// ListChildren implements ports.TaskRepository.
func (r *TaskRepo) ListChildren(ctx context.Context, parentID string) ([]*task.Task, error) {
	return r.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE parent_id = ? ORDER BY created_at, id`,
		parentID)
}

// Create implements ports.TaskRepository.
func (r *TaskRepo) Create(ctx context.Context, t *task.Task) error {
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, encodeStringPtr(t.ParentID), t.Title, t.Description,
		string(t.Status), string(t.Priority), encodeStringPtr(t.AssigneeID),
		t.EstimatedHours, t.ActualHours,
		encodeTimePtr(t.DueAt), encodeTimePtr(t.StartedAt), encodeTimePtr(t.CompletedAt),
		encodeTime(t.CreatedAt), encodeTime(t.UpdatedAt), t.Version,
	)
	if err != nil {
		return fmt.Errorf("inserting task %s: %w", t.ID, err)
	}
	return nil
}

// Update implements ports.TaskRepository. The write carries an optimistic
// version check: the row is updated only if it still holds the version the
// entity was loaded with. On success the entity's version is bumped to
// match the stored row.
func (r *TaskRepo) Update(ctx context.Context, t *task.Task) error {
	res, err := r.store.db.ExecContext(ctx,
		`UPDATE tasks SET
		   project_id = ?, parent_id = ?, title = ?, description = ?,
		   status = ?, priority = ?, assignee_id = ?,
		   estimated_hours = ?, actual_hours = ?,
		   due_at = ?, started_at = ?, completed_at = ?,
		   updated_at = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		t.ProjectID, encodeStringPtr(t.ParentID), t.Title, t.Description,
		string(t.Status), string(t.Priority), encodeStringPtr(t.AssigneeID),
		t.EstimatedHours, t.ActualHours,
		encodeTimePtr(t.DueAt), encodeTimePtr(t.StartedAt), encodeTimePtr(t.CompletedAt),
		encodeTime(t.UpdatedAt),
		t.ID, t.Version,
	)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", t.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating task %s: %w", t.ID, err)
	}
	if n == 0 {
		return r.staleWrite(ctx, t.ID)
	}

	t.Version++
	return nil
}

// Delete implements ports.TaskRepository.
func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	res, err := r.store.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// staleWrite distinguishes a version race from a missing row.
func (r *TaskRepo) staleWrite(ctx context.Context, id string) error {
	var exists int
	err := r.store.db.QueryRowContext(ctx,
		`SELECT 1 FROM tasks WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking task %s: %w", id, err)
	}
	return fmt.Errorf("task %s was modified concurrently: %w", id, domain.ErrConflict)
}

func (r *TaskRepo) queryTasks(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*task.Task, error) {
	var (
		t                             task.Task
		status, priority              string
		parentID, assigneeID          sql.NullString
		dueAt, startedAt, completedAt sql.NullString
		createdAt, updatedAt          string
	)
	if err := row.Scan(
		&t.ID, &t.ProjectID, &parentID, &t.Title, &t.Description,
		&status, &priority, &assigneeID,
		&t.EstimatedHours, &t.ActualHours,
		&dueAt, &startedAt, &completedAt,
		&createdAt, &updatedAt, &t.Version,
	); err != nil {
		return nil, err
	}

	t.Status = task.Status(status)
	t.Priority = task.Priority(priority)
	t.ParentID = decodeStringPtr(parentID)
	t.AssigneeID = decodeStringPtr(assigneeID)

	var err error
	if t.DueAt, err = decodeTimePtr(dueAt); err != nil {
		return nil, err
	}
	if t.StartedAt, err = decodeTimePtr(startedAt); err != nil {
		return nil, err
	}
	if t.CompletedAt, err = decodeTimePtr(completedAt); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
