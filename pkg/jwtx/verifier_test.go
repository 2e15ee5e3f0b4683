package jwtx_test

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/vvcoe/sembuddy/pkg/cryptox"
	"github.com/vvcoe/sembuddy/pkg/jwtx"
)

const exampleIssuer = "https://auth.sembuddy.test"

var issuedAt = time.Unix(1_750_000_000, 0).UTC()

type memRevocations struct {
	mu   sync.Mutex
	jtis map[string]bool
	err  error
}

func (m *memRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	return m.jtis[jti], nil
}

func newKeyManager(t *testing.T, alg string, rev jwtx.RevocationList) *jwtx.KeyManager {
	t.Helper()

	var key []byte
	if alg == jwtx.AlgorithmHS256 {
		secret, err := cryptox.GenerateHexSecret(32)
		require.NoError(t, err)
		key = []byte(secret)
	} else {
		var err error
		key, err = cryptox.GenerateSigningKey(alg, 2048)
		require.NoError(t, err)
	}

	km, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{
		Algorithm:   alg,
		Key:         key,
		Issuer:      exampleIssuer,
		Revocations: rev,
	})
	require.NoError(t, err)
	require.True(t, km.IsReady())
	return km
}

func sign(t *testing.T, km *jwtx.KeyManager, claims jwtx.Claims) string {
	t.Helper()
	raw, err := km.Signer.Sign(claims)
	require.NoError(t, err)
	return raw
}

func TestSignAndVerify_AllAlgorithms(t *testing.T) {
	for _, alg := range []string{jwtx.AlgorithmHS256, jwtx.AlgorithmEdDSA, jwtx.AlgorithmES256, jwtx.AlgorithmRS256} {
		t.Run(alg, func(t *testing.T) {
			km := newKeyManager(t, alg, nil)
			require.Equal(t, alg, km.Algorithm())

			claims := jwtx.NewClaims("alice", "student", jwtx.TokenTypeAccess, "Alice", exampleIssuer, issuedAt, 10*time.Minute)
			raw := sign(t, km, claims)

			got, err := km.Verifier.Verify(context.Background(), raw, issuedAt.Add(time.Minute))
			require.NoError(t, err)
			require.Equal(t, "alice", got.Subject)
			require.Equal(t, "student", got.Role)
			require.Equal(t, jwtx.TokenTypeAccess, got.TokenType)
			require.Equal(t, claims.ID, got.ID)

			jwks := km.KeySet.PublicJWKS()
			if jwtx.IsAsymmetric(alg) {
				require.Len(t, jwks.Keys, 1)
				require.Equal(t, km.Signer.KID(), jwks.Keys[0].Kid)
				require.Equal(t, alg, jwks.Keys[0].Alg)
			} else {
				require.Empty(t, jwks.Keys)
			}
		})
	}
}

func TestVerify_ValidityWindow(t *testing.T) {
	km := newKeyManager(t, jwtx.AlgorithmHS256, nil)
	ttl := 10 * time.Minute
	raw := sign(t, km, jwtx.NewClaims("bob", "staff", jwtx.TokenTypeAccess, "", exampleIssuer, issuedAt, ttl))

	for _, offset := range []time.Duration{0, time.Second, ttl / 2, ttl - time.Second, ttl - time.Nanosecond} {
		_, err := km.Verifier.Verify(context.Background(), raw, issuedAt.Add(offset))
		require.NoError(t, err, "offset %s", offset)
	}

	for _, offset := range []time.Duration{ttl, ttl + time.Second, 24 * time.Hour} {
		_, err := km.Verifier.Verify(context.Background(), raw, issuedAt.Add(offset))
		require.ErrorIs(t, err, jwtx.ErrExpired, "offset %s", offset)
	}

	_, err := km.Verifier.Verify(context.Background(), raw, issuedAt.Add(-time.Second))
	require.ErrorIs(t, err, jwtx.ErrNotYetValid)
}

func TestVerify_SubSecondIssue(t *testing.T) {
	km := newKeyManager(t, jwtx.AlgorithmHS256, nil)
	ttl := 10 * time.Minute

	for _, now := range []time.Time{
		time.Unix(1_750_000_000, 700_000_000).UTC(),
		time.Unix(1_750_000_000, 999_000_000).UTC(),
		time.Unix(1_750_000_000, 123_456_789).UTC(),
	} {
		raw := sign(t, km, jwtx.NewClaims("bob", "staff", jwtx.TokenTypeAccess, "", exampleIssuer, now, ttl))

		for _, offset := range []time.Duration{0, ttl - 500*time.Millisecond, ttl - time.Millisecond, ttl - time.Nanosecond} {
			_, err := km.Verifier.Verify(context.Background(), raw, now.Add(offset))
			require.NoError(t, err, "issued %s, offset %s", now, offset)
		}

		_, err := km.Verifier.Verify(context.Background(), raw, now.Add(ttl).Add(time.Millisecond))
		require.ErrorIs(t, err, jwtx.ErrExpired, "issued %s", now)
	}
}

func TestVerify_Malformed(t *testing.T) {
	km := newKeyManager(t, jwtx.AlgorithmHS256, nil)

	for _, raw := range []string{
		"",
		"not-a-jwt",
		"a.b",
		"a.b.c.d",
		"!!!.###.$$$",
		base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","kid":"hs256"}`)) + ".bm90LWpzb24.c2ln",
	} {
		_, err := km.Verifier.Verify(context.Background(), raw, issuedAt)
		require.ErrorIs(t, err, jwtx.ErrMalformed, "token %q", raw)
	}
}

func TestVerify_BadSignature(t *testing.T) {
	km := newKeyManager(t, jwtx.AlgorithmHS256, nil)
	claims := jwtx.NewClaims("alice", "student", jwtx.TokenTypeAccess, "", exampleIssuer, issuedAt, time.Minute)
	raw := sign(t, km, claims)

	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(raw, ".")
		forged := claims
		forged.Role = "admin"
		forgedRaw := sign(t, newKeyManager(t, jwtx.AlgorithmHS256, nil), forged)
		parts[1] = strings.Split(forgedRaw, ".")[1]

		_, err := km.Verifier.Verify(context.Background(), strings.Join(parts, "."), issuedAt)
		require.ErrorIs(t, err, jwtx.ErrBadSignature)
	})

	t.Run("different secret", func(t *testing.T) {
		other := newKeyManager(t, jwtx.AlgorithmHS256, nil)
		_, err := km.Verifier.Verify(context.Background(), sign(t, other, claims), issuedAt)
		require.ErrorIs(t, err, jwtx.ErrBadSignature)
	})

	t.Run("alg none", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
		tok.Header["kid"] = km.Signer.KID()
		unsigned, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = km.Verifier.Verify(context.Background(), unsigned, issuedAt)
		require.ErrorIs(t, err, jwtx.ErrBadSignature)
	})

	t.Run("algorithm not pinned", func(t *testing.T) {
		ed := newKeyManager(t, jwtx.AlgorithmEdDSA, nil)
		_, err := km.Verifier.Verify(context.Background(), sign(t, ed, claims), issuedAt)
		require.ErrorIs(t, err, jwtx.ErrBadSignature)
	})

	t.Run("unknown kid", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tok.Header["kid"] = "nope"
		forged, err := tok.SignedString(km.Signer.VerificationKey())
		require.NoError(t, err)

		_, err = km.Verifier.Verify(context.Background(), forged, issuedAt)
		require.ErrorIs(t, err, jwtx.ErrBadSignature)
	})
}

func TestVerify_CheckOrder(t *testing.T) {
	rev := &memRevocations{jtis: map[string]bool{}}
	km := newKeyManager(t, jwtx.AlgorithmHS256, rev)

	claims := jwtx.NewClaims("alice", "student", jwtx.TokenTypeAccess, "", exampleIssuer, issuedAt, time.Minute)
	rev.jtis[claims.ID] = true
	raw := sign(t, km, claims)

	// Expired and revoked: expiry is checked first.
	_, err := km.Verifier.Verify(context.Background(), raw, issuedAt.Add(time.Hour))
	require.ErrorIs(t, err, jwtx.ErrExpired)

	_, err = km.Verifier.Verify(context.Background(), raw, issuedAt)
	require.ErrorIs(t, err, jwtx.ErrRevoked)

	// Bad signature wins over expiry.
	other := newKeyManager(t, jwtx.AlgorithmHS256, nil)
	_, err = km.Verifier.Verify(context.Background(), sign(t, other, claims), issuedAt.Add(time.Hour))
	require.ErrorIs(t, err, jwtx.ErrBadSignature)
}

func TestVerify_Issuer(t *testing.T) {
	km := newKeyManager(t, jwtx.AlgorithmHS256, nil)
	raw := sign(t, km, jwtx.NewClaims("alice", "student", jwtx.TokenTypeAccess, "", "someone-else", issuedAt, time.Minute))

	_, err := km.Verifier.Verify(context.Background(), raw, issuedAt)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestVerify_RevocationLookupFails(t *testing.T) {
	rev := &memRevocations{err: errors.New("redis down")}
	km := newKeyManager(t, jwtx.AlgorithmHS256, rev)
	raw := sign(t, km, jwtx.NewClaims("alice", "student", jwtx.TokenTypeAccess, "", exampleIssuer, issuedAt, time.Minute))

	_, err := km.Verifier.Verify(context.Background(), raw, issuedAt)
	require.Error(t, err)
	require.False(t, jwtx.IsRejection(err), "backend failures are not token rejections")
}

func TestVerifyType(t *testing.T) {
	km := newKeyManager(t, jwtx.AlgorithmHS256, nil)
	refresh := sign(t, km, jwtx.NewClaims("alice", "student", jwtx.TokenTypeRefresh, "", exampleIssuer, issuedAt, time.Hour))

	_, err := km.Verifier.VerifyType(context.Background(), refresh, jwtx.TokenTypeAccess, issuedAt)
	require.ErrorIs(t, err, jwtx.ErrTokenType)
	require.True(t, jwtx.IsRejection(err))

	c, err := km.Verifier.VerifyType(context.Background(), refresh, jwtx.TokenTypeRefresh, issuedAt)
	require.NoError(t, err)
	require.Equal(t, "alice", c.Subject)
}

func TestNewSigner_Rejects(t *testing.T) {
	_, err := jwtx.NewSigner(jwtx.AlgorithmHS256, "", []byte("short"))
	require.Error(t, err)

	_, err = jwtx.NewSigner("PS512", "", []byte("whatever"))
	require.Error(t, err)

	edPEM, err := cryptox.GenerateSigningKey(jwtx.AlgorithmEdDSA, 0)
	require.NoError(t, err)
	_, err = jwtx.NewSigner(jwtx.AlgorithmES256, "", edPEM)
	require.Error(t, err, "key type must match algorithm")

	_, err = jwtx.NewSigner(jwtx.AlgorithmEdDSA, "", []byte("not pem"))
	require.Error(t, err)
}

func TestNewKeyManager_Requires(t *testing.T) {
	_, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{Algorithm: jwtx.AlgorithmHS256, Key: make([]byte, 32)})
	require.Error(t, err, "issuer is required")

	_, err = jwtx.NewKeyManager(jwtx.KeyManagerOptions{Algorithm: jwtx.AlgorithmHS256, Issuer: exampleIssuer})
	require.Error(t, err, "key is required")
}
