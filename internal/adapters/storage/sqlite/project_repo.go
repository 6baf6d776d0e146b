package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/workstackhq/workstack/internal/domain"
	"github.com/workstackhq/workstack/internal/domain/project"
	"github.com/workstackhq/workstack/internal/ports"
)

// Compile-time check that ProjectRepo implements ports.ProjectRepository.
var _ ports.ProjectRepository = (*ProjectRepo)(nil)

// ProjectRepo persists Project aggregates.
type ProjectRepo struct {
	store *Store
}

// NewProjectRepo creates the repository over an open store.
func NewProjectRepo(store *Store) *ProjectRepo {
	return &ProjectRepo{store: store}
}

const projectColumns = `id, team_id, name, description, archived, created_at, updated_at, version`

// Get implements ports.ProjectRepository.
func (r *ProjectRepo) Get(ctx context.Context, id string) (*project.Project, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)

	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading project %s: %w", id, err)
	}
	return p, nil
}

// List implements ports.ProjectRepository.
func (r *ProjectRepo) List(ctx context.Context, filter ports.ProjectFilter) ([]*project.Project, error) {
	var (
		conds []string
		args  []any
	)
	if filter.TeamID != nil {
		conds = append(conds, "team_id = ?")
		args = append(args, *filter.TeamID)
	}
	if !filter.IncludeArchived {
		conds = append(conds, "archived = 0")
	}

	query := `SELECT ` + projectColumns + ` FROM projects`
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

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

// Create implements ports.ProjectRepository.
func (r *ProjectRepo) Create(ctx context.Context, p *project.Project) error {
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.TeamID, p.Name, p.Description, boolToInt(p.Archived),
		encodeTime(p.CreatedAt), encodeTime(p.UpdatedAt), p.Version,
	)
	if err != nil {
		return fmt.Errorf("inserting project %s: %w", p.ID, err)
	}
	return nil
}

// Update implements ports.ProjectRepository, with the same optimistic
// version semantics as the task repository.
func (r *ProjectRepo) Update(ctx context.Context, p *project.Project) error {
	res, err := r.store.db.ExecContext(ctx,
		`UPDATE projects SET
		   team_id = ?, name = ?, description = ?, archived = ?,
		   updated_at = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		p.TeamID, p.Name, p.Description, boolToInt(p.Archived),
		encodeTime(p.UpdatedAt),
		p.ID, p.Version,
	)
	if err != nil {
		return fmt.Errorf("updating project %s: %w", p.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating project %s: %w", p.ID, err)
	}
	if n == 0 {
		var exists int
		err := r.store.db.QueryRowContext(ctx,
			`SELECT 1 FROM projects WHERE id = ?`, p.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("project %s: %w", p.ID, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("checking project %s: %w", p.ID, err)
		}
		return fmt.Errorf("project %s was modified concurrently: %w", p.ID, domain.ErrConflict)
	}

	p.Version++
	return nil
}

// Delete implements ports.ProjectRepository.
func (r *ProjectRepo) Delete(ctx context.Context, id string) error {
	res, err := r.store.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanProject(row scanner) (*project.Project, error) {
	var (
		p                    project.Project
		archived             int
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&p.ID, &p.TeamID, &p.Name, &p.Description, &archived,
		&createdAt, &updatedAt, &p.Version,
	); err != nil {
		return nil, err
	}

	p.Archived = archived != 0

	var err error
	if p.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
