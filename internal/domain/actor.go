package domain

// Role is the coarse authorization role attached to an acting identity.
// The identity context is trusted as already authenticated; roles only gate
// which aggregate operations an actor may invoke.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleProjectManager Role = "project_manager"
	RoleMember         Role = "member"
	RoleViewer         Role = "viewer"
)

// IsValid returns true if the role is one of the defined constants.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleProjectManager, RoleMember, RoleViewer:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (r Role) String() string { return string(r) }

// CanAssign reports whether the role may assign or reassign tasks.
func (r Role) CanAssign() bool {
	return r == RoleAdmin || r == RoleProjectManager
}

// CanManageProjects reports whether the role may create, rename, or archive
// projects.
func (r Role) CanManageProjects() bool {
	return r == RoleAdmin || r == RoleProjectManager
}

// CanMutateTasks reports whether the role may invoke task lifecycle
// operations. Viewers are read-only.
func (r Role) CanMutateTasks() bool {
	return r != RoleViewer && r.IsValid()
}

// Actor is the acting identity for a request: who is performing the change
// and with which role. Supplied by the identity middleware at the HTTP
// boundary.
type Actor struct {
	ID   string
	Role Role
}
