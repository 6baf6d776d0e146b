package middleware

import (
	"context"
	"net/http"

	"github.com/workstackhq/workstack/internal/adapters/http/dto"
	"github.com/workstackhq/workstack/internal/domain"
)

const (
	headerActorID   = "X-Actor-ID"
	headerActorRole = "X-Actor-Role"
)

type actorKey struct{}

// ActorFromContext extracts the acting identity installed by the Identity
// middleware. The second return is false when no identity is present,
// which only happens for routes mounted outside the middleware.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}

// WithActor returns a context carrying the acting identity. Exposed for
// handler tests that bypass the middleware.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// Identity returns middleware that builds the acting identity from the
// X-Actor-ID and X-Actor-Role headers. The headers are trusted as already
// authenticated upstream; the middleware only checks they are present and
// the role is one of the defined values. Requests without a usable
// identity are rejected with a 400 before reaching any handler.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(headerActorID)
			role := domain.Role(r.Header.Get(headerActorRole))

			fields := make(map[string]string)
			if id == "" {
				fields["actor_id"] = "X-Actor-ID header is required"
			}
			if !role.IsValid() {
				fields["actor_role"] = "X-Actor-Role header must be one of admin, project_manager, member, viewer"
			}
			if len(fields) > 0 {
				dto.WriteErrorResponse(w, r, &domain.ValidationError{Fields: fields})
				return
			}

			ctx := WithActor(r.Context(), domain.Actor{ID: id, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
