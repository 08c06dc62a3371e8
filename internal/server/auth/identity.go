// Package auth is the boundary to the external identity provider: it parses
// the provider's signed tokens into an Identity and answers role questions.
// No password checking happens here; the provider has already authenticated
// the caller.
package auth

import "fmt"

// Role is the caller's access level.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleViewer Role = "viewer"
)

// ParseRole validates a raw role value.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleUser, RoleViewer:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Identity is a pre-validated caller identity.
type Identity struct {
	UserID string
	Role   Role
}

// CanWrite reports whether the identity may create or modify records.
func (i Identity) CanWrite() bool {
	return i.Role == RoleAdmin || i.Role == RoleUser
}

// CanDelete reports whether the identity may delete records.
func (i Identity) CanDelete() bool {
	return i.Role == RoleAdmin
}
