package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default token lifetimes. Both are overridable through configuration.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 10 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// TimePrecision is the resolution of iat, nbf and exp. NumericDate is a
// float on the wire, so decoded values are rounded back to it.
const TimePrecision = time.Millisecond

func init() {
	// golang-jwt truncates NumericDate to whole seconds by default, which
	// would end tokens issued mid-second early. Encode finer than
	// TimePrecision so float decoding error stays below it.
	jwt.TimePrecision = time.Microsecond
}

// Token types carried in the "token_type" claim. An access token can never
// be used where a refresh token is expected and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims are the payload of every token we issue. Subject holds the user's
// identifier and ID holds the jti used for revocation.
type Claims struct {
	jwt.RegisteredClaims

	// Role of the subject at issue time: "admin", "staff" or "student".
	Role string `json:"role"`

	// TokenType is either "access" or "refresh".
	TokenType string `json:"token_type"`

	// Name is the display name, informational only.
	Name string `json:"name,omitempty"`
}

// NewClaims builds claims for subject valid from now until now+ttl. nbf is
// rounded down and exp up to TimePrecision, so the token is never rejected
// inside that window.
func NewClaims(subject, role, tokenType, name, issuer string, now time.Time, ttl time.Duration) Claims {
	issued := now.Truncate(TimePrecision)
	expires := now.Add(ttl)
	if t := expires.Truncate(TimePrecision); !t.Equal(expires) {
		expires = t.Add(TimePrecision)
	}

	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issued),
			NotBefore: jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        NewJTI(),
		},
		Role:      role,
		TokenType: tokenType,
		Name:      name,
	}
}

// NewJTI returns a random UUID for the "jti" claim.
func NewJTI() string {
	return uuid.NewString()
}

// RequireType returns ErrTokenType unless the token is of the wanted type.
func (c Claims) RequireType(want string) error {
	if c.TokenType != want {
		return ErrTokenType
	}
	return nil
}

// ExpiresAtTime returns exp as a time.Time, or the zero time when unset.
func (c Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Round(TimePrecision)
}

// ValidateIssuer checks if the issuer matches expected value.
func (c Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateTime checks exp and nbf against now. A token is valid while
// now < exp; leeway widens both bounds for clock skew.
func (c Claims) ValidateTime(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt == nil {
		return ErrMalformed
	}
	if !now.Before(c.ExpiresAtTime().Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Round(TimePrecision).Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
