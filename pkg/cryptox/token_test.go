package cryptox

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"128-bit token", TokenSize128},
		{"256-bit token", TokenSize256},
		{"512-bit token", TokenSize512},
		{"custom size", 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			require.NoError(t, err)

			raw, err := base64.RawURLEncoding.DecodeString(token)
			require.NoError(t, err)
			require.Len(t, raw, tt.size)

			again, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEqual(t, token, again, "tokens should be unique")
		})
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := GenerateToken(size)
		require.Error(t, err)
	}
}

func TestGenerateHexSecret(t *testing.T) {
	secret, err := GenerateHexSecret(32)
	require.NoError(t, err)
	require.Len(t, secret, 64)

	_, err = hex.DecodeString(secret)
	require.NoError(t, err)
}

func TestGenerateSigningKey(t *testing.T) {
	for _, alg := range []string{"EdDSA", "ES256"} {
		t.Run(alg, func(t *testing.T) {
			out, err := GenerateSigningKey(alg, 0)
			require.NoError(t, err)

			block, _ := pem.Decode(out)
			require.NotNil(t, block)
			require.Equal(t, "PRIVATE KEY", block.Type)
		})
	}

	t.Run("RS256 rejects small keys", func(t *testing.T) {
		_, err := GenerateSigningKey("RS256", 1024)
		require.Error(t, err)
	})

	t.Run("HS256 has no key pair", func(t *testing.T) {
		_, err := GenerateSigningKey("HS256", 0)
		require.Error(t, err)
	})
}
