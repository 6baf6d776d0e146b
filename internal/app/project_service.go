package app

import (
	"context"
	"time"

	appctx "github.com/workstackhq/workstack/internal/app/context"
	"github.com/workstackhq/workstack/internal/app/fanout"
	"github.com/workstackhq/workstack/internal/app/pipeline"
	"github.com/workstackhq/workstack/internal/domain"
	"github.com/workstackhq/workstack/internal/domain/project"
	"github.com/workstackhq/workstack/internal/domain/task"
	"github.com/workstackhq/workstack/internal/ports"
)

// Compile-time check that ProjectService implements ports.ProjectService.
var _ ports.ProjectService = (*ProjectService)(nil)

// overviewWorkers bounds the per-project task listings running
// concurrently during the overview query.
const overviewWorkers = 4

type createProjectCmd struct {
	Params ports.CreateProjectParams
	Actor  domain.Actor
}

type updateProjectCmd struct {
	ID     string
	Params ports.UpdateProjectParams
	Actor  domain.Actor
}

type projectCmd struct {
	ID    string
	Actor domain.Actor
}

// ProjectService orchestrates project commands and serves the overview
// read model.
type ProjectService struct {
	projects ports.ProjectRepository
	tasks    ports.TaskRepository

	create  pipeline.Handler[createProjectCmd, *project.Project]
	update  pipeline.Handler[updateProjectCmd, *project.Project]
	archive pipeline.Handler[projectCmd, *project.Project]
}

// NewProjectService assembles the command chains.
func NewProjectService(
	projects ports.ProjectRepository,
	tasks ports.TaskRepository,
	dispatcher ports.Dispatcher,
	slow time.Duration,
) *ProjectService {
	s := &ProjectService{projects: projects, tasks: tasks}

	s.create = newCommand("project.create", dispatcher, slow, s.handleCreate)
	s.update = newCommand("project.update", dispatcher, slow, s.handleUpdate)
	s.archive = newCommand("project.archive", dispatcher, slow, s.handleArchive)

	return s
}

// Create implements ports.ProjectService.
func (s *ProjectService) Create(ctx context.Context, params ports.CreateProjectParams, actor domain.Actor) (*project.Project, error) {
	ctx = appctx.With(ctx, appctx.New())
	return s.create(ctx, createProjectCmd{Params: params, Actor: actor})
}

// Get implements ports.ProjectService.
func (s *ProjectService) Get(ctx context.Context, id string) (*project.Project, error) {
	return s.projects.Get(ctx, id)
}

// List implements ports.ProjectService.
func (s *ProjectService) List(ctx context.Context, filter ports.ProjectFilter) ([]*project.Project, error) {
	return s.projects.List(ctx, filter)
}

// Update implements ports.ProjectService.
func (s *ProjectService) Update(ctx context.Context, id string, params ports.UpdateProjectParams, actor domain.Actor) (*project.Project, error) {
	ctx = appctx.With(ctx, appctx.New())
	return s.update(ctx, updateProjectCmd{ID: id, Params: params, Actor: actor})
}

// Archive implements ports.ProjectService.
func (s *ProjectService) Archive(ctx context.Context, id string, actor domain.Actor) (*project.Project, error) {
	ctx = appctx.With(ctx, appctx.New())
	return s.archive(ctx, projectCmd{ID: id, Actor: actor})
}

// Tasks implements ports.ProjectService. The project must exist; an
// empty project returns an empty list, not an error.
func (s *ProjectService) Tasks(ctx context.Context, projectID string) ([]*task.Task, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	return s.tasks.ListByProject(ctx, projectID)
}

// Overview implements ports.ProjectService. It fans out one task listing
// per active project with bounded concurrency and aggregates status
// counts; any listing failure fails the whole query.
func (s *ProjectService) Overview(ctx context.Context) ([]ports.ProjectOverview, error) {
	projects, err := s.projects.List(ctx, ports.ProjectFilter{})
	if err != nil {
		return nil, err
	}

	results := fanout.Run(ctx, overviewWorkers, projects,
		func(ctx context.Context, p *project.Project) (ports.ProjectOverview, error) {
			tasks, err := s.tasks.ListByProject(ctx, p.ID)
			if err != nil {
				return ports.ProjectOverview{}, err
			}

			byState := make(map[task.Status]int)
			open := 0
			for _, t := range tasks {
				byState[t.Status]++
				if !t.Status.IsTerminal() {
					open++
				}
			}
			return ports.ProjectOverview{Project: p, TasksByState: byState, OpenTasks: open}, nil
		})

	overviews := make([]ports.ProjectOverview, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			return nil, r.Err
		}
		overviews = append(overviews, r.Value)
	}
	return overviews, nil
}

// Handlers.

func (s *ProjectService) handleCreate(ctx context.Context, cmd createProjectCmd) (*project.Project, error) {
	p, err := project.New(cmd.Params.TeamID, cmd.Params.Name, cmd.Params.Description, cmd.Actor)
	if err != nil {
		return nil, err
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}
	appctx.Track(ctx, p)
	return p, nil
}

func (s *ProjectService) handleUpdate(ctx context.Context, cmd updateProjectCmd) (*project.Project, error) {
	return s.mutate(ctx, cmd.ID, func(p *project.Project) error {
		if cmd.Params.Name != nil {
			if err := p.Rename(*cmd.Params.Name, cmd.Actor); err != nil {
				return err
			}
		}
		if cmd.Params.Description != nil {
			if err := p.UpdateDescription(*cmd.Params.Description, cmd.Actor); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *ProjectService) handleArchive(ctx context.Context, cmd projectCmd) (*project.Project, error) {
	return s.mutate(ctx, cmd.ID, func(p *project.Project) error {
		return p.Archive(cmd.Actor)
	})
}

func (s *ProjectService) mutate(ctx context.Context, id string, fn func(*project.Project) error) (*project.Project, error) {
	p, err := appctx.GetOrFetch(ctx, "project:"+id, func(ctx context.Context) (*project.Project, error) {
		return s.projects.Get(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := s.projects.Update(ctx, p); err != nil {
		return nil, err
	}
	appctx.Track(ctx, p)
	return p, nil
}
