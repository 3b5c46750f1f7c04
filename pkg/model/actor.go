package model

type Role string

const (
	RoleGuest Role = "guest"
	RoleHost  Role = "host"
	RoleAdmin Role = "admin"
)

// Actor is the authenticated caller as asserted by the identity provider.
// The core trusts these values and never re-verifies credentials.
type Actor struct {
	ID    string `json:"id" validate:"required,mongodb"`
	Email string `json:"email" validate:"required,email"`
	Role  Role   `json:"role" validate:"required,oneof=guest host admin"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
