package handlers

import (
	"net/http"
	"strconv"

	"github.com/workstackhq/workstack/internal/adapters/http/dto"
	"github.com/workstackhq/workstack/internal/domain"
	"github.com/workstackhq/workstack/internal/ports"
)

// ActivityHandler serves the per-project activity feed.
type ActivityHandler struct {
	svc ports.ActivityService
}

// NewActivityHandler creates a new ActivityHandler with the given service port.
func NewActivityHandler(svc ports.ActivityService) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

// ListActivity handles GET /api/v1/activity?project_id=&limit=. Entries
// come back newest first.
func (h *ActivityHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		dto.WriteErrorResponse(w, r, &domain.ValidationError{
			Fields: map[string]string{"project_id": "query parameter is required"},
		})
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			dto.WriteErrorResponse(w, r, &domain.ValidationError{
				Fields: map[string]string{"limit": "must be a non-negative integer"},
			})
			return
		}
		limit = n
	}

	entries, err := h.svc.ListByProject(r.Context(), projectID, limit)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToActivityListResponse(entries))
}
