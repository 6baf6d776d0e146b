// Package http provides the inbound HTTP adapter including routing and server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/workstackhq/workstack/internal/adapters/http/handlers"
	"github.com/workstackhq/workstack/internal/adapters/http/middleware"
)

// NewRouter creates an HTTP handler with all application routes registered.
// Middleware is applied globally in the order given. Mutating routes
// additionally require the acting identity headers; reads do not.
func NewRouter(
	projectHandler *handlers.ProjectHandler,
	taskHandler *handlers.TaskHandler,
	activityHandler *handlers.ActivityHandler,
	healthHandler *handlers.HealthHandler,
	middlewares ...func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	// Health endpoints (outside /api/v1 prefix).
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// API v1 routes.
	r.Route("/api/v1", func(r chi.Router) {
		// Queries.
		r.Get("/projects", projectHandler.ListProjects)
		r.Get("/projects/overview", projectHandler.Overview)
		r.Get("/projects/{id}", projectHandler.GetProject)
		r.Get("/projects/{id}/tasks", projectHandler.ListProjectTasks)
		r.Get("/tasks", taskHandler.ListTasks)
		r.Get("/tasks/{id}", taskHandler.GetTask)
		r.Get("/activity", activityHandler.ListActivity)

		// Commands require the X-Actor-ID/X-Actor-Role headers.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Identity())

			r.Post("/projects", projectHandler.CreateProject)
			r.Patch("/projects/{id}", projectHandler.UpdateProject)
			r.Post("/projects/{id}/archive", projectHandler.ArchiveProject)

			r.Post("/tasks", taskHandler.CreateTask)
			r.Patch("/tasks/{id}", taskHandler.UpdateTask)
			r.Post("/tasks/{id}/start", taskHandler.StartTask)
			r.Post("/tasks/{id}/return-to-backlog", taskHandler.ReturnTaskToBacklog)
			r.Post("/tasks/{id}/submit-review", taskHandler.SubmitTaskForReview)
			r.Post("/tasks/{id}/complete", taskHandler.CompleteTask)
			r.Post("/tasks/{id}/cancel", taskHandler.CancelTask)
			r.Post("/tasks/{id}/assign", taskHandler.AssignTask)
		})
	})

	return r
}
