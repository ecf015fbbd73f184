package auth

import (
	"github.com/abnahid/Vehicle-Rental-System/internal/domain"
	"github.com/abnahid/Vehicle-Rental-System/internal/domain/user"
	"github.com/google/uuid"
)

// Actor is the authenticated identity performing a request.
type Actor struct {
	ID   uuid.UUID
	Role user.Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == user.RoleAdmin
}

// Authorize is the single ownership/role capability check used by every
// operation that touches owned resources: admins may act on anything, other
// actors only on resources they own.
func Authorize(actor Actor, resourceOwnerID uuid.UUID) error {
	if actor.IsAdmin() || actor.ID == resourceOwnerID {
		return nil
	}
	return domain.NewForbiddenError("you do not have access to this resource")
}

// RequireAdmin denies any actor without the admin role.
func RequireAdmin(actor Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	return domain.NewForbiddenError("admin role required")
}
