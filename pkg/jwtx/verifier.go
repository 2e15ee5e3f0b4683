package jwtx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrBadSignature = errors.New("jwtx: bad signature")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrRevoked      = errors.New("jwtx: token revoked")
	ErrTokenType    = errors.New("jwtx: unexpected token type")
)

// RevocationList answers whether a jti has been revoked before expiry.
type RevocationList interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// KeyLookup resolves a kid to a verification key.
type KeyLookup interface {
	Get(kid string) (any, error)
}

// VerifyOptions captures what a Verifier expects of a token.
type VerifyOptions struct {
	// Algorithm every token must be signed with. Anything else, "none"
	// included, fails as a bad signature.
	Algorithm string

	// Keys resolves the kid header.
	Keys KeyLookup

	// Issuer the token must have (claims.iss). Empty means "don't care".
	Issuer string

	// Leeway allows small clock skew when validating exp/nbf.
	Leeway time.Duration

	// Revocations is consulted last. Nil disables revocation checks.
	Revocations RevocationList
}

// Verifier validates tokens. It holds no mutable state and is safe for
// concurrent use.
type Verifier struct {
	opts   VerifyOptions
	parser *jwt.Parser
}

// NewVerifier builds a Verifier pinned to opts.Algorithm.
func NewVerifier(opts VerifyOptions) (*Verifier, error) {
	if opts.Algorithm == "" {
		return nil, errors.New("jwtx: verifier algorithm is required")
	}
	if opts.Keys == nil {
		return nil, errors.New("jwtx: verifier keys are required")
	}
	return &Verifier{
		opts: opts,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{opts.Algorithm}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// Verify checks raw at instant now. Checks run in a fixed order and the
// first failure wins: structure (ErrMalformed), signature
// (ErrBadSignature), time and issuer (ErrExpired, ErrNotYetValid,
// ErrIssuer), then revocation (ErrRevoked). Claims are returned unmodified.
func (v *Verifier) Verify(ctx context.Context, raw string, now time.Time) (Claims, error) {
	var claims Claims

	_, err := v.parser.ParseWithClaims(raw, &claims, v.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	if err := claims.ValidateTime(now, v.opts.Leeway); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateIssuer(v.opts.Issuer); err != nil {
		return Claims{}, err
	}

	if v.opts.Revocations != nil && claims.ID != "" {
		revoked, err := v.opts.Revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return Claims{}, fmt.Errorf("jwtx: revocation lookup: %w", err)
		}
		if revoked {
			return Claims{}, ErrRevoked
		}
	}

	return claims, nil
}

// VerifyType is Verify followed by a token_type check.
func (v *Verifier) VerifyType(ctx context.Context, raw, tokenType string, now time.Time) (Claims, error) {
	claims, err := v.Verify(ctx, raw, now)
	if err != nil {
		return Claims{}, err
	}
	if err := claims.RequireType(tokenType); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

func (v *Verifier) keyFunc(t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, errors.New("missing kid")
	}
	key, err := v.opts.Keys.Get(kid)
	if err != nil {
		return nil, fmt.Errorf("unknown kid %q: %w", kid, err)
	}
	return key, nil
}

// IsRejection reports whether err is one of the verification failures
// that should surface as 401 rather than a server error.
func IsRejection(err error) bool {
	return errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrBadSignature) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrNotYetValid) ||
		errors.Is(err, ErrIssuer) ||
		errors.Is(err, ErrRevoked) ||
		errors.Is(err, ErrTokenType)
}
