package entity

import "github.com/google/uuid"

// Identity is the authenticated caller. Handlers resolve it from the access
// token and pass it explicitly into every usecase call.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

func (i Identity) IsDoctor() bool {
	return i.Role == RoleDoctor
}
