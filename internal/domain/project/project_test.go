package project

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workstackhq/workstack/internal/domain"
)

var (
	pm     = domain.Actor{ID: "user-pm", Role: domain.RoleProjectManager}
	member = domain.Actor{ID: "user-member", Role: domain.RoleMember}
)

func newProject(t *testing.T) *Project {
	t.Helper()
	p, err := New("team-1", "Platform", "", pm)
	require.NoError(t, err)
	p.DrainEvents()
	return p
}

func TestNew(t *testing.T) {
	t.Run("creates and raises created", func(t *testing.T) {
		p, err := New("team-1", "Platform", "infra work", pm)
		require.NoError(t, err)

		assert.NotEmpty(t, p.ID)
		assert.False(t, p.Archived)
		assert.Equal(t, int64(1), p.Version)

		evts := p.DrainEvents()
		require.Len(t, evts, 1)
		created, ok := evts[0].(Created)
		require.True(t, ok)
		assert.Equal(t, p.ID, created.ProjectID)
		assert.Equal(t, "team-1", created.TeamID)
		assert.Equal(t, "Platform", created.Name)
	})

	t.Run("member may not create", func(t *testing.T) {
		_, err := New("team-1", "Platform", "", member)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrDomainRule))
	})

	t.Run("rejects blank name", func(t *testing.T) {
		_, err := New("team-1", "  ", "", pm)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "name")
	})
}

func TestRename(t *testing.T) {
	t.Run("raises renamed with both names", func(t *testing.T) {
		p := newProject(t)

		require.NoError(t, p.Rename("Platform Core", pm))
		assert.Equal(t, "Platform Core", p.Name)

		evts := p.DrainEvents()
		require.Len(t, evts, 1)
		renamed := evts[0].(Renamed)
		assert.Equal(t, "Platform", renamed.Previous)
		assert.Equal(t, "Platform Core", renamed.Name)
	})

	t.Run("same name is a no op", func(t *testing.T) {
		p := newProject(t)
		require.NoError(t, p.Rename("Platform", pm))
		assert.Zero(t, p.PendingEvents())
	})

	t.Run("rejected when archived", func(t *testing.T) {
		p := newProject(t)
		require.NoError(t, p.Archive(pm))
		p.DrainEvents()

		err := p.Rename("New Name", pm)
		assert.True(t, errors.Is(err, domain.ErrDomainRule))
		assert.Equal(t, "Platform", p.Name)
	})
}

func TestArchive(t *testing.T) {
	t.Run("marks archived and raises", func(t *testing.T) {
		p := newProject(t)

		require.NoError(t, p.Archive(pm))
		assert.True(t, p.Archived)

		evts := p.DrainEvents()
		require.Len(t, evts, 1)
		assert.Equal(t, EventArchived, evts[0].EventName())
	})

	t.Run("second archive is rejected", func(t *testing.T) {
		p := newProject(t)
		require.NoError(t, p.Archive(pm))
		p.DrainEvents()

		err := p.Archive(pm)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrDomainRule))
		assert.Zero(t, p.PendingEvents())
	})

	t.Run("member may not archive", func(t *testing.T) {
		p := newProject(t)
		err := p.Archive(member)
		assert.True(t, errors.Is(err, domain.ErrDomainRule))
		assert.False(t, p.Archived)
	})
}

func TestUpdateDescription(t *testing.T) {
	p := newProject(t)

	require.NoError(t, p.UpdateDescription("all infra work", pm))
	assert.Equal(t, "all infra work", p.Description)

	evts := p.DrainEvents()
	require.Len(t, evts, 1)
	assert.Equal(t, EventUpdated, evts[0].EventName())

	require.NoError(t, p.UpdateDescription("all infra work", pm))
	assert.Zero(t, p.PendingEvents())
}
