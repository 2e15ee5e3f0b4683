package jwtx_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vvcoe/sembuddy/pkg/jwtx"
)

func TestNewClaims(t *testing.T) {
	now := time.Unix(1_700_000_000, 0).UTC()
	c := jwtx.NewClaims("alice", "student", jwtx.TokenTypeAccess, "Alice", "sembuddy", now, 10*time.Minute)

	require.Equal(t, "alice", c.Subject)
	require.Equal(t, "student", c.Role)
	require.Equal(t, jwtx.TokenTypeAccess, c.TokenType)
	require.Equal(t, "Alice", c.Name)
	require.Equal(t, "sembuddy", c.Issuer)
	require.Equal(t, now, c.IssuedAt.Time)
	require.Equal(t, now.Add(10*time.Minute), c.ExpiresAtTime())

	_, err := uuid.Parse(c.ID)
	require.NoError(t, err, "jti should be a UUID")

	other := jwtx.NewClaims("alice", "student", jwtx.TokenTypeAccess, "", "sembuddy", now, time.Minute)
	require.NotEqual(t, c.ID, other.ID)
}

func TestNewClaims_SubSecondBounds(t *testing.T) {
	now := time.Unix(1_700_000_000, 123_456_789).UTC()
	c := jwtx.NewClaims("alice", "student", jwtx.TokenTypeAccess, "", "sembuddy", now, time.Minute)

	require.Equal(t, time.Unix(1_700_000_000, 123_000_000).UTC(), c.NotBefore.Time.UTC())
	require.Equal(t, time.Unix(1_700_000_060, 124_000_000).UTC(), c.ExpiresAtTime().UTC())
	require.NoError(t, c.ValidateTime(now, 0))
	require.NoError(t, c.ValidateTime(now.Add(time.Minute-time.Nanosecond), 0))
}

func TestValidateIssuer(t *testing.T) {
	c := jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "sembuddy"}}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer("sembuddy"))
	})

	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})

	t.Run("mismatched issuer", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateIssuer("someone-else"), jwtx.ErrIssuer)
	})
}

func TestValidateTime(t *testing.T) {
	now := time.Unix(1_700_000_000, 0).UTC()
	exp := now.Add(time.Minute)

	claims := jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}}

	tests := []struct {
		name   string
		at     time.Time
		leeway time.Duration
		want   error
	}{
		{"at issue", now, 0, nil},
		{"just before expiry", exp.Add(-time.Nanosecond), 0, nil},
		{"exactly at expiry", exp, 0, jwtx.ErrExpired},
		{"after expiry", exp.Add(time.Hour), 0, jwtx.ErrExpired},
		{"before nbf", now.Add(-time.Second), 0, jwtx.ErrNotYetValid},
		{"within leeway after expiry", exp.Add(10 * time.Second), 30 * time.Second, nil},
		{"within leeway before nbf", now.Add(-10 * time.Second), 30 * time.Second, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := claims.ValidateTime(tt.at, tt.leeway)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("missing exp", func(t *testing.T) {
		require.ErrorIs(t, jwtx.Claims{}.ValidateTime(now, 0), jwtx.ErrMalformed)
	})
}

func TestRequireType(t *testing.T) {
	c := jwtx.Claims{TokenType: jwtx.TokenTypeRefresh}
	require.NoError(t, c.RequireType(jwtx.TokenTypeRefresh))
	require.ErrorIs(t, c.RequireType(jwtx.TokenTypeAccess), jwtx.ErrTokenType)
}
