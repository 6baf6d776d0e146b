package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/workstackhq/workstack/internal/adapters/http/dto"
	"github.com/workstackhq/workstack/internal/domain"
	"github.com/workstackhq/workstack/internal/domain/task"
	"github.com/workstackhq/workstack/internal/ports"
)

// TaskHandler handles HTTP requests for task CRUD and lifecycle
// operations.
type TaskHandler struct {
	svc ports.TaskService
}

// NewTaskHandler creates a new TaskHandler with the given service port.
func NewTaskHandler(svc ports.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// CreateTask handles POST /api/v1/tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.svc.Create(r.Context(), req.Params(), a)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToTaskResponse(created))
}

// GetTask handles GET /api/v1/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	tk, err := h.svc.Get(r.Context(), id)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTaskResponse(tk))
}

// ListTasks handles GET /api/v1/tasks with optional project_id, status,
// and assignee_id query filters.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	filter, err := taskFilterFromQuery(r)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	tasks, err := h.svc.List(r.Context(), filter)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTaskListResponse(tasks))
}

// UpdateTask handles PATCH /api/v1/tasks/{id}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.svc.Update(r.Context(), id, req.Params(), a)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTaskResponse(updated))
}

// StartTask handles POST /api/v1/tasks/{id}/start.
func (h *TaskHandler) StartTask(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.svc.Start)
}

// ReturnTaskToBacklog handles POST /api/v1/tasks/{id}/return-to-backlog.
func (h *TaskHandler) ReturnTaskToBacklog(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.svc.ReturnToBacklog)
}

// SubmitTaskForReview handles POST /api/v1/tasks/{id}/submit-review.
func (h *TaskHandler) SubmitTaskForReview(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.svc.SubmitForReview)
}

// CompleteTask handles POST /api/v1/tasks/{id}/complete.
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.CompleteTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	done, err := h.svc.Complete(r.Context(), id, req.ActualHours, a)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTaskResponse(done))
}

// CancelTask handles POST /api/v1/tasks/{id}/cancel. The response
// reports how many dependents were cancelled alongside the task.
func (h *TaskHandler) CancelTask(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	cancelled, cascaded, err := h.svc.Cancel(r.Context(), id, a)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToCancelTaskResponse(cancelled, cascaded))
}

// AssignTask handles POST /api/v1/tasks/{id}/assign. A null assignee_id
// unassigns the task.
func (h *TaskHandler) AssignTask(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.AssignTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	assigned, err := h.svc.Assign(r.Context(), id, req.AssigneeID, a)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTaskResponse(assigned))
}

// lifecycle runs a body-less status operation shared by start, return to
// backlog, and submit for review.
func (h *TaskHandler) lifecycle(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id string, actor domain.Actor) (*task.Task, error),
) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	tk, err := op(r.Context(), id, a)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTaskResponse(tk))
}

// taskFilterFromQuery builds a TaskFilter from the request query string.
func taskFilterFromQuery(r *http.Request) (ports.TaskFilter, error) {
	var filter ports.TaskFilter
	q := r.URL.Query()

	if v := q.Get("project_id"); v != "" {
		filter.ProjectID = &v
	}
	if v := q.Get("assignee_id"); v != "" {
		filter.AssigneeID = &v
	}
	if v := q.Get("status"); v != "" {
		status := task.Status(v)
		if !status.IsValid() {
			return ports.TaskFilter{}, &domain.ValidationError{
				Fields: map[string]string{"status": fmt.Sprintf("invalid: %q", v)},
			}
		}
		filter.Status = &status
	}
	return filter, nil
}
