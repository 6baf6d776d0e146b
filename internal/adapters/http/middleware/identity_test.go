package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/workstackhq/workstack/internal/adapters/http/middleware"
	"github.com/workstackhq/workstack/internal/domain"
)

func TestIdentity_InstallsActor(t *testing.T) {
	t.Parallel()

	var gotActor domain.Actor
	var gotOK bool
	handler := middleware.Identity()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotActor, gotOK = middleware.ActorFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", http.NoBody)
	req.Header.Set("X-Actor-ID", "user-42")
	req.Header.Set("X-Actor-Role", "project_manager")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !gotOK {
		t.Fatal("ActorFromContext ok = false, want true")
	}
	if gotActor.ID != "user-42" {
		t.Errorf("Actor.ID = %q, want %q", gotActor.ID, "user-42")
	}
	if gotActor.Role != domain.RoleProjectManager {
		t.Errorf("Actor.Role = %q, want %q", gotActor.Role, domain.RoleProjectManager)
	}
}

func TestIdentity_MissingID(t *testing.T) {
	t.Parallel()

	called := false
	handler := middleware.Identity()(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", http.NoBody)
	req.Header.Set("X-Actor-Role", "member")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if called {
		t.Error("handler was called, want request rejected")
	}
}

func TestIdentity_InvalidRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		role string
	}{
		{"empty role", ""},
		{"unknown role", "superuser"},
		{"case sensitive", "Admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := middleware.Identity()(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
				t.Error("handler was called, want request rejected")
			}))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/test", http.NoBody)
			req.Header.Set("X-Actor-ID", "user-42")
			if tt.role != "" {
				req.Header.Set("X-Actor-Role", tt.role)
			}
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("Content-Type = %q, want %q", ct, "application/problem+json")
			}
		})
	}
}

func TestWithActor_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := middleware.WithActor(t.Context(), domain.Actor{ID: "u", Role: domain.RoleViewer})
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		t.Fatal("ActorFromContext ok = false, want true")
	}
	if actor.Role != domain.RoleViewer {
		t.Errorf("Role = %q, want %q", actor.Role, domain.RoleViewer)
	}
}
