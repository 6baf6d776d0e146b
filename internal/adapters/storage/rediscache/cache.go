// Package rediscache decorates the repositories with a Redis read-through
// cache. Reads by id hit Redis first and fall back to the wrapped store on
// miss or on any Redis error; every write goes to the store first and then
// removes the cached key rather than overwriting it, so a failed
// invalidation can only serve stale data until the TTL expires.
package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/workstackhq/workstack/internal/domain/project"
	"github.com/workstackhq/workstack/internal/domain/task"
	"github.com/workstackhq/workstack/internal/ports"
)

// Compile-time checks against the repository ports.
var (
	_ ports.TaskRepository    = (*TaskCache)(nil)
	_ ports.ProjectRepository = (*ProjectCache)(nil)
)

// TaskCache wraps a TaskRepository with per-id caching. Listings always
// pass through to the store.
type TaskCache struct {
	base  ports.TaskRepository
	redis *redis.Client
	ttl   time.Duration
}

// NewTaskCache creates a caching wrapper using the provided Redis client
// and TTL. A zero TTL disables caching of fills while keeping
// invalidation active.
func NewTaskCache(base ports.TaskRepository, client *redis.Client, ttl time.Duration) *TaskCache {
	if base == nil {
		panic("rediscache.NewTaskCache: base repository is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &TaskCache{base: base, redis: client, ttl: ttl}
}

// Get implements ports.TaskRepository.
func (c *TaskCache) Get(ctx context.Context, id string) (*task.Task, error) {
	if t, ok := loadCached[task.Task](ctx, c.redis, taskKey(id)); ok {
		return t, nil
	}

	t, err := c.base.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	storeCached(ctx, c.redis, taskKey(id), t, c.ttl)
	return t, nil
}

// List implements ports.TaskRepository.
func (c *TaskCache) List(ctx context.Context, filter ports.TaskFilter) ([]*task.Task, error) {
	return c.base.List(ctx, filter)
}

// ListByProject implements ports.TaskRepository.
func (c *TaskCache) ListByProject(ctx context.Context, projectID string) ([]*task.Task, error) {
	return c.base.ListByProject(ctx, projectID)
}

// ListChildren implements ports.TaskRepository.
func (c *TaskCache) ListChildren(ctx context.Context, parentID string) ([]*task.Task, error) {
	return c.base.ListChildren(ctx, parentID)
}

// Create implements ports.TaskRepository.
func (c *TaskCache) Create(ctx context.Context, t *task.Task) error {
	if err := c.base.Create(ctx, t); err != nil {
		return err
	}
	evict(ctx, c.redis, taskKey(t.ID))
	return nil
}

// Update implements ports.TaskRepository.
func (c *TaskCache) Update(ctx context.Context, t *task.Task) error {
	if err := c.base.Update(ctx, t); err != nil {
		return err
	}
	evict(ctx, c.redis, taskKey(t.ID))
	return nil
}

// Delete implements ports.TaskRepository.
func (c *TaskCache) Delete(ctx context.Context, id string) error {
	if err := c.base.Delete(ctx, id); err != nil {
		return err
	}
	evict(ctx, c.redis, taskKey(id))
	return nil
}

// ProjectCache wraps a ProjectRepository with per-id caching.
type ProjectCache struct {
	base  ports.ProjectRepository
	redis *redis.Client
	ttl   time.Duration
}

// NewProjectCache creates a caching wrapper using the provided Redis
// client and TTL.
func NewProjectCache(base ports.ProjectRepository, client *redis.Client, ttl time.Duration) *ProjectCache {
	if base == nil {
		panic("rediscache.NewProjectCache: base repository is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &ProjectCache{base: base, redis: client, ttl: ttl}
}

// Get implements ports.ProjectRepository.
func (c *ProjectCache) Get(ctx context.Context, id string) (*project.Project, error) {
	if p, ok := loadCached[project.Project](ctx, c.redis, projectKey(id)); ok {
		return p, nil
	}

	p, err := c.base.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	storeCached(ctx, c.redis, projectKey(id), p, c.ttl)
	return p, nil
}

// List implements ports.ProjectRepository.
func (c *ProjectCache) List(ctx context.Context, filter ports.ProjectFilter) ([]*project.Project, error) {
	return c.base.List(ctx, filter)
}

// Create implements ports.ProjectRepository.
func (c *ProjectCache) Create(ctx context.Context, p *project.Project) error {
	if err := c.base.Create(ctx, p); err != nil {
		return err
	}
	evict(ctx, c.redis, projectKey(p.ID))
	return nil
}

// Update implements ports.ProjectRepository.
func (c *ProjectCache) Update(ctx context.Context, p *project.Project) error {
	if err := c.base.Update(ctx, p); err != nil {
		return err
	}
	evict(ctx, c.redis, projectKey(p.ID))
	return nil
}

// Delete implements ports.ProjectRepository.
func (c *ProjectCache) Delete(ctx context.Context, id string) error {
	if err := c.base.Delete(ctx, id); err != nil {
		return err
	}
	evict(ctx, c.redis, projectKey(id))
	return nil
}

// loadCached returns the cached entity, or false on miss, redis failure,
// or a corrupt entry. Corrupt and unreadable entries are deleted so the
// next fill starts clean.
func loadCached[T any](ctx context.Context, client *redis.Client, key string) (*T, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			_ = client.Del(ctx, key).Err()
		}
		return nil, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		_ = client.Del(ctx, key).Err()
		return nil, false
	}
	return &v, true
}

// storeCached fills the cache after a successful read. Failures are
// ignored; the cache is an optimization, never a source of truth.
func storeCached[T any](ctx context.Context, client *redis.Client, key string, v *T, ttl time.Duration) {
	if client == nil || ttl == 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = client.Set(ctx, key, data, ttl).Err()
}

// evict removes a key after a write. A failed eviction is tolerated; the
// TTL bounds how long a stale entry can live.
func evict(ctx context.Context, client *redis.Client, key string) {
	if client == nil {
		return
	}
	_ = client.Del(ctx, key).Err()
}

func taskKey(id string) string    { return "task:" + id }
func projectKey(id string) string { return "project:" + id }
