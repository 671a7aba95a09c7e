package service

import "github.com/iliyamo/tour-booking/internal/model"

// Principal identifies the authenticated caller of an operation.  Handlers
// build it from the verified JWT claims.
type Principal struct {
	UserID uint64
	Role   uint8
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == model.RoleAdmin
}

// CanSee reports whether the principal may read a resource owned by ownerID.
func (p Principal) CanSee(ownerID uint64) bool {
	return p.IsAdmin() || p.UserID == ownerID
}
