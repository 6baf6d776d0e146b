package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	appctx "github.com/workstackhq/workstack/internal/app/context"
	"github.com/workstackhq/workstack/internal/app/pipeline"
	"github.com/workstackhq/workstack/internal/domain"
	"github.com/workstackhq/workstack/internal/domain/project"
	"github.com/workstackhq/workstack/internal/domain/task"
	"github.com/workstackhq/workstack/internal/ports"
)

// Compile-time check that TaskService implements ports.TaskService.
var _ ports.TaskService = (*TaskService)(nil)

// Command types. Each carries the acting identity alongside the input so
// rules and handlers never reach into the context for it.
type createTaskCmd struct {
	Params ports.CreateTaskParams
	Actor  domain.Actor
}

type taskCmd struct {
	ID    string
	Actor domain.Actor
}

type updateTaskCmd struct {
	ID     string
	Params task.UpdateParams
	Actor  domain.Actor
}

type completeTaskCmd struct {
	ID          string
	ActualHours float64
	Actor       domain.Actor
}

type assignTaskCmd struct {
	ID       string
	Assignee *string
	Actor    domain.Actor
}

type cancelResult struct {
	Task     *task.Task
	Cascaded int
}

// TaskService orchestrates task commands through the pipeline and serves
// task queries directly from the repository.
type TaskService struct {
	tasks    ports.TaskRepository
	projects ports.ProjectRepository

	create   pipeline.Handler[createTaskCmd, *task.Task]
	update   pipeline.Handler[updateTaskCmd, *task.Task]
	start    pipeline.Handler[taskCmd, *task.Task]
	backlog  pipeline.Handler[taskCmd, *task.Task]
	submit   pipeline.Handler[taskCmd, *task.Task]
	complete pipeline.Handler[completeTaskCmd, *task.Task]
	cancel   pipeline.Handler[taskCmd, cancelResult]
	assign   pipeline.Handler[assignTaskCmd, *task.Task]
}

// NewTaskService assembles the command chains. slow is the handler
// duration above which the performance stage warns.
func NewTaskService(
	tasks ports.TaskRepository,
	projects ports.ProjectRepository,
	dispatcher ports.Dispatcher,
	slow time.Duration,
) *TaskService {
	s := &TaskService{tasks: tasks, projects: projects}

	s.create = newCommand("task.create", dispatcher, slow, s.handleCreate,
		s.projectOpenRule, s.parentRule)
	s.update = newCommand("task.update", dispatcher, slow, s.handleUpdate)
	s.start = newCommand("task.start", dispatcher, slow,
		s.transition((*task.Task).Start))
	s.backlog = newCommand("task.return_to_backlog", dispatcher, slow,
		s.transition((*task.Task).ReturnToBacklog))
	s.submit = newCommand("task.submit_review", dispatcher, slow,
		s.transition((*task.Task).SubmitForReview))
	s.complete = newCommand("task.complete", dispatcher, slow, s.handleComplete)
	s.cancel = newCommand("task.cancel", dispatcher, slow, s.handleCancel)
	s.assign = newCommand("task.assign", dispatcher, slow, s.handleAssign)

	return s
}

// Create implements ports.TaskService.
func (s *TaskService) Create(ctx context.Context, params ports.CreateTaskParams, actor domain.Actor) (*task.Task, error) {
	ctx = appctx.With(ctx, appctx.New())
	return s.create(ctx, createTaskCmd{Params: params, Actor: actor})
}

// Get implements ports.TaskService.
func (s *TaskService) Get(ctx context.Context, id string) (*task.Task, error) {
	return s.tasks.Get(ctx, id)
}

// List implements ports.TaskService.
func (s *TaskService) List(ctx context.Context, filter ports.TaskFilter) ([]*task.Task, error) {
	return s.tasks.List(ctx, filter)
}

// Update implements ports.TaskService.
func (s *TaskService) Update(ctx context.Context, id string, params task.UpdateParams, actor domain.Actor) (*task.Task, error) {
	ctx = appctx.With(ctx, appctx.New())
	return s.update(ctx, updateTaskCmd{ID: id, Params: params, Actor: actor})
}

// Start implements ports.TaskService.
func (s *TaskService) Start(ctx context.Context, id string, actor domain.Actor) (*task.Task, error) {
	ctx = appctx.With(ctx, appctx.New())
	return s.start(ctx, taskCmd{ID: id, Actor: actor})
}

// ReturnToBacklog implements ports.TaskService.
func (s *TaskService) ReturnToBacklog(ctx context.Context, id string, actor domain.Actor) (*task.Task, error) {
	ctx = appctx.With(ctx, appctx.New())
	return s.backlog(ctx, taskCmd{ID: id, Actor: actor})
}

// SubmitForReview implements ports.TaskService.
func (s *TaskService) SubmitForReview(ctx context.Context, id string, actor domain.Actor) (*task.Task, error) {
	ctx = appctx.With(ctx, appctx.New())
	return s.submit(ctx, taskCmd{ID: id, Actor: actor})
}

// Complete implements ports.TaskService.
func (s *TaskService) Complete(ctx context.Context, id string, actualHours float64, actor domain.Actor) (*task.Task, error) {
	ctx = appctx.With(ctx, appctx.New())
	return s.complete(ctx, completeTaskCmd{ID: id, ActualHours: actualHours, Actor: actor})
}

// Cancel implements ports.TaskService.
func (s *TaskService) Cancel(ctx context.Context, id string, actor domain.Actor) (*task.Task, int, error) {
	ctx = appctx.With(ctx, appctx.New())
	res, err := s.cancel(ctx, taskCmd{ID: id, Actor: actor})
	if err != nil {
		return nil, 0, err
	}
	return res.Task, res.Cascaded, nil
}

// Assign implements ports.TaskService.
func (s *TaskService) Assign(ctx context.Context, id string, assignee *string, actor domain.Actor) (*task.Task, error) {
	ctx = appctx.With(ctx, appctx.New())
	return s.assign(ctx, assignTaskCmd{ID: id, Assignee: assignee, Actor: actor})
}

// Handlers.

func (s *TaskService) handleCreate(ctx context.Context, cmd createTaskCmd) (*task.Task, error) {
	tk, err := task.New(task.NewParams{
		ProjectID:      cmd.Params.ProjectID,
		ParentID:       cmd.Params.ParentID,
		Title:          cmd.Params.Title,
		Description:    cmd.Params.Description,
		Priority:       cmd.Params.Priority,
		AssigneeID:     cmd.Params.AssigneeID,
		EstimatedHours: cmd.Params.EstimatedHours,
		DueAt:          cmd.Params.DueAt,
	}, cmd.Actor)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.Create(ctx, tk); err != nil {
		return nil, err
	}
	appctx.Track(ctx, tk)
	return tk, nil
}

func (s *TaskService) handleUpdate(ctx context.Context, cmd updateTaskCmd) (*task.Task, error) {
	return s.mutate(ctx, cmd.ID, func(tk *task.Task) error {
		return tk.Update(cmd.Params, cmd.Actor)
	})
}

// transition adapts a no-argument status operation into a handler.
func (s *TaskService) transition(op func(*task.Task, domain.Actor) error) pipeline.Handler[taskCmd, *task.Task] {
	return func(ctx context.Context, cmd taskCmd) (*task.Task, error) {
		return s.mutate(ctx, cmd.ID, func(tk *task.Task) error {
			return op(tk, cmd.Actor)
		})
	}
}

func (s *TaskService) handleComplete(ctx context.Context, cmd completeTaskCmd) (*task.Task, error) {
	return s.mutate(ctx, cmd.ID, func(tk *task.Task) error {
		return tk.Complete(cmd.ActualHours, cmd.Actor)
	})
}

func (s *TaskService) handleAssign(ctx context.Context, cmd assignTaskCmd) (*task.Task, error) {
	return s.mutate(ctx, cmd.ID, func(tk *task.Task) error {
		return tk.Assign(cmd.Assignee, cmd.Actor)
	})
}

// handleCancel cancels the task, then sweeps its non-terminal dependents
// in the same flow. Every cancellation raises its own event; the dispatch
// stage drains them together after the last write.
func (s *TaskService) handleCancel(ctx context.Context, cmd taskCmd) (cancelResult, error) {
	tk, err := s.mutate(ctx, cmd.ID, func(tk *task.Task) error {
		return tk.Cancel(cmd.Actor)
	})
	if err != nil {
		return cancelResult{}, err
	}

	children, err := s.tasks.ListChildren(ctx, cmd.ID)
	if err != nil {
		return cancelResult{}, fmt.Errorf("listing dependents of task %s: %w", cmd.ID, err)
	}

	cascaded := 0
	for _, child := range children {
		if child.Status.IsTerminal() {
			continue
		}
		if err := child.CancelCascaded(cmd.Actor); err != nil {
			return cancelResult{}, err
		}
		if err := s.tasks.Update(ctx, child); err != nil {
			return cancelResult{}, err
		}
		appctx.Track(ctx, child)
		cascaded++
	}

	return cancelResult{Task: tk, Cascaded: cascaded}, nil
}

// mutate loads a task, applies fn, persists and tracks it. The aggregate
// is tracked only after the write, so a conflict or store failure leaves
// nothing to dispatch.
func (s *TaskService) mutate(ctx context.Context, id string, fn func(*task.Task) error) (*task.Task, error) {
	tk, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(tk); err != nil {
		return nil, err
	}
	if err := s.tasks.Update(ctx, tk); err != nil {
		return nil, err
	}
	appctx.Track(ctx, tk)
	return tk, nil
}

func (s *TaskService) loadTask(ctx context.Context, id string) (*task.Task, error) {
	return appctx.GetOrFetch(ctx, "task:"+id, func(ctx context.Context) (*task.Task, error) {
		return s.tasks.Get(ctx, id)
	})
}

func (s *TaskService) loadProject(ctx context.Context, id string) (*project.Project, error) {
	return appctx.GetOrFetch(ctx, "project:"+id, func(ctx context.Context) (*project.Project, error) {
		return s.projects.Get(ctx, id)
	})
}

// Rules.

// projectOpenRule requires the target project to exist and not be
// archived. A dead store is an infrastructure error and aborts the
// command instead of reporting a field problem.
func (s *TaskService) projectOpenRule(ctx context.Context, cmd createTaskCmd) (map[string]string, error) {
	if cmd.Params.ProjectID == "" {
		return map[string]string{"project_id": domain.MsgRequired}, nil
	}

	p, err := s.loadProject(ctx, cmd.Params.ProjectID)
	if errors.Is(err, domain.ErrNotFound) {
		return map[string]string{"project_id": "project does not exist"}, nil
	}
	if err != nil {
		return nil, err
	}
	if p.Archived {
		return map[string]string{"project_id": "project is archived"}, nil
	}
	return nil, nil
}

// parentRule enforces single-level nesting: the parent must exist, belong
// to the same project, and itself be parentless.
func (s *TaskService) parentRule(ctx context.Context, cmd createTaskCmd) (map[string]string, error) {
	if cmd.Params.ParentID == nil {
		return nil, nil
	}

	parent, err := s.loadTask(ctx, *cmd.Params.ParentID)
	if errors.Is(err, domain.ErrNotFound) {
		return map[string]string{"parent_id": "parent task does not exist"}, nil
	}
	if err != nil {
		return nil, err
	}
	if parent.ProjectID != cmd.Params.ProjectID {
		return map[string]string{"parent_id": "parent task belongs to a different project"}, nil
	}
	if parent.ParentID != nil {
		return map[string]string{"parent_id": "tasks nest a single level"}, nil
	}
	return nil, nil
}
