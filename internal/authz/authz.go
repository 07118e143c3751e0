// Package authz holds the ownership checks used by the HTTP layer.
package authz

import (
	"shorturl-api/internal/apperrors"
	"shorturl-api/internal/entities"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == entities.RoleAdmin
}

// IsSelfOrAdmin reports whether caller may act on the user identified by
// targetID.
func IsSelfOrAdmin(caller Identity, targetID string) bool {
	return caller.IsAdmin() || (caller.UserID != "" && caller.UserID == targetID)
}

// AssertSelfOrAdmin returns a Forbidden error unless IsSelfOrAdmin holds.
func AssertSelfOrAdmin(caller Identity, targetID string) error {
	if !IsSelfOrAdmin(caller, targetID) {
		return apperrors.New(apperrors.ErrForbidden, "You can not perform this action.")
	}
	return nil
}
