package domain

import (
	"errors"
	"fmt"
)

// Role is the authorization tier attached to a user and embedded in every
// token issued for them.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
	RoleStudent Role = "student"
)

var ErrInvalidRole = errors.New("domain: invalid role")

// Roles lists every valid role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleStaff, RoleStudent}
}

// ParseRole accepts exactly one of the lowercase role names.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleStudent:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

// SelfService reports whether a caller may register with this role
// without an admin's involvement.
func (r Role) SelfService() bool {
	return r == RoleStaff || r == RoleStudent
}
