package sqlite

import (
	"context"
	"fmt"

	"github.com/workstackhq/workstack/internal/ports"
)

// Compile-time check that Activity implements ports.ActivityLog.
var _ ports.ActivityLog = (*Activity)(nil)

// Activity persists the per-project activity feed.
type Activity struct {
	store *Store
}

// NewActivity creates the activity log over an open store.
func NewActivity(store *Store) *Activity {
	return &Activity{store: store}
}

const defaultActivityLimit = 50

// Append implements ports.ActivityLog.
func (a *Activity) Append(ctx context.Context, entry ports.ActivityEntry) error {
	_, err := a.store.db.ExecContext(ctx,
		`INSERT INTO activity (event_name, aggregate_id, project_id, actor_id, occurred_at, detail)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.EventName, entry.AggregateID, entry.ProjectID, entry.ActorID,
		encodeTime(entry.OccurredAt), entry.Detail,
	)
	if err != nil {
		return fmt.Errorf("appending %s activity: %w", entry.EventName, err)
	}
	return nil
}

// ListByProject implements ports.ActivityLog. Entries come back newest
// first; limit <= 0 uses the default page size.
func (a *Activity) ListByProject(ctx context.Context, projectID string, limit int) ([]ports.ActivityEntry, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}

	rows, err := a.store.db.QueryContext(ctx,
		`SELECT id, event_name, aggregate_id, project_id, actor_id, occurred_at, detail
		 FROM activity WHERE project_id = ? ORDER BY id DESC LIMIT ?`,
		projectID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing activity for project %s: %w", projectID, err)
	}
	defer rows.Close()

	var entries []ports.ActivityEntry
	for rows.Next() {
		var (
			entry      ports.ActivityEntry
			occurredAt string
		)
		if err := rows.Scan(
			&entry.ID, &entry.EventName, &entry.AggregateID, &entry.ProjectID,
			&entry.ActorID, &occurredAt, &entry.Detail,
		); err != nil {
			return nil, fmt.Errorf("scanning activity entry: %w", err)
		}
		if entry.OccurredAt, err = decodeTime(occurredAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing activity for project %s: %w", projectID, err)
	}
	return entries, nil
}
