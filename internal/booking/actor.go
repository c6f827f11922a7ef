package booking

import "github.com/google/uuid"

// Role is the privilege level of whoever performs a booking operation.
type Role string

const (
	RoleGuest Role = "guest"
	RoleAdmin Role = "admin"
)

// Actor identifies the caller of a booking operation.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Owns reports whether the actor is the owner of a booking held by userID.
func (a Actor) Owns(userID uuid.UUID) bool {
	return a.UserID != uuid.Nil && a.UserID == userID
}

// System is the actor used by background jobs. It has admin privileges and
// no user id.
var System = Actor{Role: RoleAdmin}
