package jwtx

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJWKRoundTrip_RSA(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwk := NewRSAJWK("rsa-1", "sig", AlgorithmRS256, &priv.PublicKey)
	require.Equal(t, "RSA", jwk.Kty)
	require.Equal(t, "AQAB", jwk.E)

	key, err := parseJWKToKey(jwk)
	require.NoError(t, err)

	pub, ok := key.(*rsa.PublicKey)
	require.True(t, ok)
	require.True(t, priv.PublicKey.Equal(pub))
}

func TestJWKRoundTrip_Ed25519(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	jwk := NewEd25519JWK("ed-1", "sig", AlgorithmEdDSA, pub)
	require.Equal(t, "OKP", jwk.Kty)
	require.Equal(t, "Ed25519", jwk.Crv)

	key, err := parseJWKToKey(jwk)
	require.NoError(t, err)
	require.Equal(t, pub, key)
}

func TestJWKRoundTrip_ES256(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	jwk := NewES256JWK("ec-1", "sig", AlgorithmES256, &priv.PublicKey)

	x, err := base64.RawURLEncoding.DecodeString(jwk.X)
	require.NoError(t, err)
	require.Len(t, x, 32, "coordinates are padded to the field size")

	key, err := parseJWKToKey(jwk)
	require.NoError(t, err)

	pub, ok := key.(*ecdsa.PublicKey)
	require.True(t, ok)
	require.True(t, priv.PublicKey.Equal(pub))
}

func TestParseJWK_Rejects(t *testing.T) {
	tests := []struct {
		name string
		jwk  JWK
	}{
		{"unsupported kty", JWK{Kty: "oct"}},
		{"unsupported OKP curve", JWK{Kty: "OKP", Crv: "X25519", X: "AAAA"}},
		{"unsupported EC curve", JWK{Kty: "EC", Crv: "P-384", X: "AAAA", Y: "AAAA"}},
		{"bad RSA base64", JWK{Kty: "RSA", N: "!!!", E: "AQAB"}},
		{"short Ed25519 key", JWK{Kty: "OKP", Crv: "Ed25519", X: "AAAA"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseJWKToKey(tt.jwk)
			require.Error(t, err)
		})
	}
}

func TestKeySet_HMACNeverPublished(t *testing.T) {
	signer, err := NewSignerHS256("hs", make([]byte, 32))
	require.NoError(t, err)

	ks := NewKeySet()
	require.False(t, ks.IsReady())
	require.NoError(t, ks.AddSigner(signer))
	require.True(t, ks.IsReady())

	key, err := ks.Get("hs")
	require.NoError(t, err)
	require.Equal(t, make([]byte, 32), key)

	out, err := json.Marshal(ks.PublicJWKS())
	require.NoError(t, err)
	require.JSONEq(t, `{"keys":[]}`, string(out))

	_, err = ks.Get("missing")
	require.ErrorIs(t, err, ErrNoKey)
}
