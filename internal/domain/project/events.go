package project

import "github.com/workstackhq/workstack/internal/domain"

// Event names used for subscriber registration.
const (
	EventCreated  = "project.created"
	EventRenamed  = "project.renamed"
	EventUpdated  = "project.updated"
	EventArchived = "project.archived"
)

// Created is raised once by the factory.
type Created struct {
	domain.EventBase
	ProjectID string
	TeamID    string
	Name      string
}

// EventName implements domain.Event.
func (Created) EventName() string { return EventCreated }

// Renamed is raised by Rename and carries both names.
type Renamed struct {
	domain.EventBase
	ProjectID string
	Previous  string
	Name      string
}

// EventName implements domain.Event.
func (Renamed) EventName() string { return EventRenamed }

// Updated is raised for description changes.
type Updated struct {
	domain.EventBase
	ProjectID string
}

// EventName implements domain.Event.
func (Updated) EventName() string { return EventUpdated }

// Archived is raised by Archive.
type Archived struct {
	domain.EventBase
	ProjectID string
}

// EventName implements domain.Event.
func (Archived) EventName() string { return EventArchived }
