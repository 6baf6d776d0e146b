package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/workstackhq/workstack/internal/adapters/http/dto"
	"github.com/workstackhq/workstack/internal/adapters/http/handlers"
	"github.com/workstackhq/workstack/internal/ports"
)

func TestListActivity_Success(t *testing.T) {
	t.Parallel()

	svc := &stubActivityService{t: t, listFn: func(_ context.Context, projectID string, limit int) ([]ports.ActivityEntry, error) {
		if projectID != "proj-1" {
			t.Errorf("projectID = %q, want %q", projectID, "proj-1")
		}
		if limit != 10 {
			t.Errorf("limit = %d, want 10", limit)
		}
		return []ports.ActivityEntry{
			{ID: 1, EventName: "task.created", AggregateID: "task-1", ProjectID: projectID, ActorID: "user-pm", OccurredAt: testTime},
		}, nil
	}}
	h := handlers.NewActivityHandler(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/activity?project_id=proj-1&limit=10", nil)
	h.ListActivity(rec, req)

	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[dto.ActivityListResponse](t, rec)
	if resp.Count != 1 {
		t.Fatalf("Count = %d, want 1", resp.Count)
	}
	if resp.Entries[0].EventName != "task.created" {
		t.Errorf("EventName = %q, want %q", resp.Entries[0].EventName, "task.created")
	}
}

func TestListActivity_MissingProjectID(t *testing.T) {
	t.Parallel()

	h := handlers.NewActivityHandler(&stubActivityService{t: t})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/activity", nil)
	h.ListActivity(rec, req)

	requireStatus(t, rec, http.StatusBadRequest)
}

func TestListActivity_InvalidLimit(t *testing.T) {
	t.Parallel()

	h := handlers.NewActivityHandler(&stubActivityService{t: t})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/activity?project_id=proj-1&limit=lots", nil)
	h.ListActivity(rec, req)

	requireStatus(t, rec, http.StatusBadRequest)
}
