package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/workstackhq/workstack/internal/adapters/http/middleware"
	"github.com/workstackhq/workstack/internal/domain"
	"github.com/workstackhq/workstack/internal/domain/project"
	"github.com/workstackhq/workstack/internal/domain/task"
	"github.com/workstackhq/workstack/internal/ports"
)

var (
	testTime  = time.Date(2026, 2, 12, 15, 4, 5, 0, time.UTC)
	testActor = domain.Actor{ID: "user-pm", Role: domain.RoleProjectManager}
)

func withChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withActor installs the acting identity the way the middleware would.
func withActor(r *http.Request) *http.Request {
	return r.WithContext(middleware.WithActor(r.Context(), testActor))
}

func validProject() *project.Project {
	return &project.Project{
		ID:        "proj-1",
		TeamID:    "team-1",
		Name:      "Sprint 1",
		CreatedAt: testTime,
		UpdatedAt: testTime,
		Version:   1,
	}
}

func validTask() *task.Task {
	return &task.Task{
		ID:        "task-1",
		ProjectID: "proj-1",
		Title:     "Buy groceries",
		Status:    task.StatusToDo,
		Priority:  task.PriorityMedium,
		CreatedAt: testTime,
		UpdatedAt: testTime,
		Version:   1,
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		t.Fatalf("failed to encode JSON body: %v", err)
	}
	return buf
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var result T
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	return result
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Errorf("status = %d, want %d; body = %s", rec.Code, want, rec.Body.String())
	}
}

// stubTaskService implements ports.TaskService with function fields; nil
// fields fail the test if called.
type stubTaskService struct {
	t *testing.T

	createFn   func(ctx context.Context, params ports.CreateTaskParams, actor domain.Actor) (*task.Task, error)
	getFn      func(ctx context.Context, id string) (*task.Task, error)
	listFn     func(ctx context.Context, filter ports.TaskFilter) ([]*task.Task, error)
	updateFn   func(ctx context.Context, id string, params task.UpdateParams, actor domain.Actor) (*task.Task, error)
	startFn    func(ctx context.Context, id string, actor domain.Actor) (*task.Task, error)
	backlogFn  func(ctx context.Context, id string, actor domain.Actor) (*task.Task, error)
	submitFn   func(ctx context.Context, id string, actor domain.Actor) (*task.Task, error)
	completeFn func(ctx context.Context, id string, actualHours float64, actor domain.Actor) (*task.Task, error)
	cancelFn   func(ctx context.Context, id string, actor domain.Actor) (*task.Task, int, error)
	assignFn   func(ctx context.Context, id string, assignee *string, actor domain.Actor) (*task.Task, error)
}

func (s *stubTaskService) Create(ctx context.Context, params ports.CreateTaskParams, actor domain.Actor) (*task.Task, error) {
	if s.createFn == nil {
		s.t.Fatal("unexpected Create call")
	}
	return s.createFn(ctx, params, actor)
}

func (s *stubTaskService) Get(ctx context.Context, id string) (*task.Task, error) {
	if s.getFn == nil {
		s.t.Fatal("unexpected Get call")
	}
	return s.getFn(ctx, id)
}

func (s *stubTaskService) List(ctx context.Context, filter ports.TaskFilter) ([]*task.Task, error) {
	if s.listFn == nil {
		s.t.Fatal("unexpected List call")
	}
	return s.listFn(ctx, filter)
}

func (s *stubTaskService) Update(ctx context.Context, id string, params task.UpdateParams, actor domain.Actor) (*task.Task, error) {
	if s.updateFn == nil {
		s.t.Fatal("unexpected Update call")
	}
	return s.updateFn(ctx, id, params, actor)
}

func (s *stubTaskService) Start(ctx context.Context, id string, actor domain.Actor) (*task.Task, error) {
	if s.startFn == nil {
		s.t.Fatal("unexpected Start call")
	}
	return s.startFn(ctx, id, actor)
}

func (s *stubTaskService) ReturnToBacklog(ctx context.Context, id string, actor domain.Actor) (*task.Task, error) {
	if s.backlogFn == nil {
		s.t.Fatal("unexpected ReturnToBacklog call")
	}
	return s.backlogFn(ctx, id, actor)
}

func (s *stubTaskService) SubmitForReview(ctx context.Context, id string, actor domain.Actor) (*task.Task, error) {
	if s.submitFn == nil {
		s.t.Fatal("unexpected SubmitForReview call")
	}
	return s.submitFn(ctx, id, actor)
}

func (s *stubTaskService) Complete(ctx context.Context, id string, actualHours float64, actor domain.Actor) (*task.Task, error) {
	if s.completeFn == nil {
		s.t.Fatal("unexpected Complete call")
	}
	return s.completeFn(ctx, id, actualHours, actor)
}

func (s *stubTaskService) Cancel(ctx context.Context, id string, actor domain.Actor) (*task.Task, int, error) {
	if s.cancelFn == nil {
		s.t.Fatal("unexpected Cancel call")
	}
	return s.cancelFn(ctx, id, actor)
}

func (s *stubTaskService) Assign(ctx context.Context, id string, assignee *string, actor domain.Actor) (*task.Task, error) {
	if s.assignFn == nil {
		s.t.Fatal("unexpected Assign call")
	}
	return s.assignFn(ctx, id, assignee, actor)
}

// stubProjectService implements ports.ProjectService with function fields.
type stubProjectService struct {
	t *testing.T

	createFn   func(ctx context.Context, params ports.CreateProjectParams, actor domain.Actor) (*project.Project, error)
	getFn      func(ctx context.Context, id string) (*project.Project, error)
	listFn     func(ctx context.Context, filter ports.ProjectFilter) ([]*project.Project, error)
	updateFn   func(ctx context.Context, id string, params ports.UpdateProjectParams, actor domain.Actor) (*project.Project, error)
	archiveFn  func(ctx context.Context, id string, actor domain.Actor) (*project.Project, error)
	tasksFn    func(ctx context.Context, projectID string) ([]*task.Task, error)
	overviewFn func(ctx context.Context) ([]ports.ProjectOverview, error)
}

func (s *stubProjectService) Create(ctx context.Context, params ports.CreateProjectParams, actor domain.Actor) (*project.Project, error) {
	if s.createFn == nil {
		s.t.Fatal("unexpected Create call")
	}
	return s.createFn(ctx, params, actor)
}

func (s *stubProjectService) Get(ctx context.Context, id string) (*project.Project, error) {
	if s.getFn == nil {
		s.t.Fatal("unexpected Get call")
	}
	return s.getFn(ctx, id)
}

func (s *stubProjectService) List(ctx context.Context, filter ports.ProjectFilter) ([]*project.Project, error) {
	if s.listFn == nil {
		s.t.Fatal("unexpected List call")
	}
	return s.listFn(ctx, filter)
}

func (s *stubProjectService) Update(ctx context.Context, id string, params ports.UpdateProjectParams, actor domain.Actor) (*project.Project, error) {
	if s.updateFn == nil {
		s.t.Fatal("unexpected Update call")
	}
	return s.updateFn(ctx, id, params, actor)
}

func (s *stubProjectService) Archive(ctx context.Context, id string, actor domain.Actor) (*project.Project, error) {
	if s.archiveFn == nil {
		s.t.Fatal("unexpected Archive call")
	}
	return s.archiveFn(ctx, id, actor)
}

func (s *stubProjectService) Tasks(ctx context.Context, projectID string) ([]*task.Task, error) {
	if s.tasksFn == nil {
		s.t.Fatal("unexpected Tasks call")
	}
	return s.tasksFn(ctx, projectID)
}

func (s *stubProjectService) Overview(ctx context.Context) ([]ports.ProjectOverview, error) {
	if s.overviewFn == nil {
		s.t.Fatal("unexpected Overview call")
	}
	return s.overviewFn(ctx)
}

// stubActivityService implements ports.ActivityService.
type stubActivityService struct {
	t      *testing.T
	listFn func(ctx context.Context, projectID string, limit int) ([]ports.ActivityEntry, error)
}

func (s *stubActivityService) ListByProject(ctx context.Context, projectID string, limit int) ([]ports.ActivityEntry, error) {
	if s.listFn == nil {
		s.t.Fatal("unexpected ListByProject call")
	}
	return s.listFn(ctx, projectID, limit)
}
