// Package project contains the Project aggregate: the container that
// groups tasks under a team, and the events its operations raise.
package project

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/workstackhq/workstack/internal/domain"
)

var timeNow = time.Now

var _ domain.Aggregate = (*Project)(nil)

// Project groups tasks for a team. Archiving is one-way: an archived
// project keeps its tasks readable but accepts no further changes.
type Project struct {
	ID          string
	TeamID      string
	Name        string
	Description string
	Archived    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64

	rec domain.EventRecorder
}

// New creates a project and raises the Created event. Only actors whose
// role permits project management may create projects.
func New(teamID, name, description string, actor domain.Actor) (*Project, error) {
	if !actor.Role.CanManageProjects() {
		return nil, &domain.RuleViolationError{
			Entity: "project",
			Rule:   fmt.Sprintf("role %q may not manage projects", actor.Role),
		}
	}
	now := timeNow().UTC()
	p := &Project{
		ID:          uuid.NewString(),
		TeamID:      teamID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.rec.Raise(Created{
		EventBase: domain.EventBase{At: now, ActorID: actor.ID},
		ProjectID: p.ID,
		TeamID:    p.TeamID,
		Name:      p.Name,
	})
	return p, nil
}

// Validate checks field-level rules for the Project entity.
func (p *Project) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(p.Name) == "" {
		fields["name"] = domain.MsgRequired
	}
	if strings.TrimSpace(p.TeamID) == "" {
		fields["team_id"] = domain.MsgRequired
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// AggregateID implements domain.Aggregate.
func (p *Project) AggregateID() string { return p.ID }

// DrainEvents implements domain.Aggregate.
func (p *Project) DrainEvents() []domain.Event { return p.rec.DrainEvents() }

// PendingEvents reports the number of undrained events.
func (p *Project) PendingEvents() int { return p.rec.PendingEvents() }

// Rename changes the project name and raises the Renamed event. A rename
// to the current name is a no-op and raises nothing.
func (p *Project) Rename(name string, actor domain.Actor) error {
	if err := p.mutable(actor); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return &domain.ValidationError{Fields: map[string]string{"name": domain.MsgRequired}}
	}
	if name == p.Name {
		return nil
	}
	prev := p.Name
	now := timeNow().UTC()
	p.Name = name
	p.UpdatedAt = now
	p.rec.Raise(Renamed{
		EventBase: domain.EventBase{At: now, ActorID: actor.ID},
		ProjectID: p.ID,
		Previous:  prev,
		Name:      name,
	})
	return nil
}

// UpdateDescription changes the description and raises the Renamed-style
// Updated event.
func (p *Project) UpdateDescription(description string, actor domain.Actor) error {
	if err := p.mutable(actor); err != nil {
		return err
	}
	if description == p.Description {
		return nil
	}
	now := timeNow().UTC()
	p.Description = description
	p.UpdatedAt = now
	p.rec.Raise(Updated{
		EventBase: domain.EventBase{At: now, ActorID: actor.ID},
		ProjectID: p.ID,
	})
	return nil
}

// Archive marks the project archived and raises the Archived event.
// Archiving an already-archived project is rejected.
func (p *Project) Archive(actor domain.Actor) error {
	if !actor.Role.CanManageProjects() {
		return &domain.RuleViolationError{
			Entity: "project", ID: p.ID,
			Rule: fmt.Sprintf("role %q may not manage projects", actor.Role),
		}
	}
	if p.Archived {
		return &domain.RuleViolationError{
			Entity: "project", ID: p.ID,
			Rule: "project is already archived",
		}
	}
	now := timeNow().UTC()
	p.Archived = true
	p.UpdatedAt = now
	p.rec.Raise(Archived{
		EventBase: domain.EventBase{At: now, ActorID: actor.ID},
		ProjectID: p.ID,
	})
	return nil
}

func (p *Project) mutable(actor domain.Actor) error {
	if !actor.Role.CanManageProjects() {
		return &domain.RuleViolationError{
			Entity: "project", ID: p.ID,
			Rule: fmt.Sprintf("role %q may not manage projects", actor.Role),
		}
	}
	if p.Archived {
		return &domain.RuleViolationError{
			Entity: "project", ID: p.ID,
			Rule: "archived projects cannot be modified",
		}
	}
	return nil
}
