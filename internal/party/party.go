// Package party models the two sides of a collaboration and the
// authenticated actor performing an operation. Role strings match the
// values stored in the roles table.
package party

// Role is the application-level role of an authenticated user.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleEcole       Role = "ecole"
	RoleIntervenant Role = "intervenant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEcole || r == RoleIntervenant
}

// Actor is the resolved {user, role} pair every service operation receives.
// Authentication happens upstream; services only trust this pair.
type Actor struct {
	UserID uint
	Role   Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Side tags which side of a collaboration a Party is on.
type Side string

const (
	SideEcole       Side = "ecole"
	SideIntervenant Side = "intervenant"
)

// Party is one side of a collaboration: a school or an intervenant,
// identified by its entity id (not the user id).
type Party struct {
	Side Side
	ID   uint
}

func Ecole(id uint) Party       { return Party{Side: SideEcole, ID: id} }
func Intervenant(id uint) Party { return Party{Side: SideIntervenant, ID: id} }

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideEcole {
		return SideIntervenant
	}
	return SideEcole
}
