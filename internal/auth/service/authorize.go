package service

import (
	"slices"

	"github.com/vvcoe/sembuddy/internal/auth/domain"
	"github.com/vvcoe/sembuddy/pkg/jwtx"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	DecisionDenied Decision = iota
	DecisionAllowed
)

func (d Decision) IsAllowed() bool { return d == DecisionAllowed }

func (d Decision) String() string {
	if d == DecisionAllowed {
		return "allowed"
	}
	return "denied"
}

// Authorize allows claims whose role is exactly required. There is no role
// hierarchy: an admin is not implicitly staff.
//
// Claims must already have been verified; Authorize only looks at the role.
func Authorize(claims jwtx.Claims, required domain.Role) Decision {
	return AuthorizeAny(claims, required)
}

// AuthorizeAny allows claims whose role is one of roles.
func AuthorizeAny(claims jwtx.Claims, roles ...domain.Role) Decision {
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return DecisionDenied
	}
	if slices.Contains(roles, role) {
		return DecisionAllowed
	}
	return DecisionDenied
}
