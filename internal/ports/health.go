package ports

import "context"

// HealthChecker is implemented by every component the readiness probe
// inspects: the sqlite store, the redis cache, and the webhook client.
type HealthChecker interface {
	// Name identifies the component in the readiness response,
	// e.g. "sqlite" or "redis".
	Name() string

	// HealthCheck returns nil when the component is serving, or an error
	// describing what is wrong. Implementations honor ctx cancellation.
	HealthCheck(ctx context.Context) error
}

// HealthRegistry collects HealthCheckers and runs them for the readiness
// endpoint.
type HealthRegistry interface {
	Register(checker HealthChecker)

	// CheckAll runs every registered check and returns the outcome keyed
	// by checker name, nil meaning healthy.
	CheckAll(ctx context.Context) map[string]error
}
