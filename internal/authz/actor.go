package authz

import (
	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/model"
)

// Actor is the authenticated account attempting an operation, together with
// the id of its role-specific profile. Admin checks never depend on profile
// ownership.
type Actor struct {
	Account   *model.Account
	ProfileID uuid.UUID
}

func (a *Actor) Role() model.Role {
	if a == nil || a.Account == nil {
		return ""
	}
	return a.Account.Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a *Actor) IsAdmin() bool {
	return a.Role() == model.RoleAdmin
}
