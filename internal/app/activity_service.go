package app

import (
	"context"

	"github.com/workstackhq/workstack/internal/ports"
)

// Compile-time check that ActivityService implements ports.ActivityService.
var _ ports.ActivityService = (*ActivityService)(nil)

// ActivityService serves the per-project activity feed. It is read-only;
// entries are written by the activity subscriber during event dispatch.
type ActivityService struct {
	log ports.ActivityLog
}

// NewActivityService creates the service over the activity log.
func NewActivityService(log ports.ActivityLog) *ActivityService {
	return &ActivityService{log: log}
}

// ListByProject implements ports.ActivityService.
func (s *ActivityService) ListByProject(ctx context.Context, projectID string, limit int) ([]ports.ActivityEntry, error) {
	return s.log.ListByProject(ctx, projectID, limit)
}
