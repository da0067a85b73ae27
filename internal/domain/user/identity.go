package user

import "github.com/google/uuid"

// Identity is the already-resolved caller: the auth middleware verifies the
// session credential once and core operations receive this value explicitly,
// never reading ambient request state.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
