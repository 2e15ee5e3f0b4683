//go:build e2e

package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vvcoe/sembuddy/pkg/authsdk"
)

func TestHealthEndpoints(t *testing.T) {
	baseURL := setupAuthContainer(t, containerOptions{})
	client := authsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	live, err := client.GetLiveness(ctx)
	assertHealthy(t, live, err)
	require.NotEmpty(t, live.Version)

	ready, err := client.GetReadiness(ctx)
	assertHealthy(t, ready, err)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Signer)
}

func TestJWKSWithGeneratedEdDSAKey(t *testing.T) {
	baseURL := setupAuthContainer(t, containerOptions{env: map[string]string{
		"AUTH_ALGORITHM":        "EdDSA",
		"AUTH_SIGNING_KEY_FILE": "/data/signing_key.pem",
		"AUTH_KEY_ID":           "sembuddy-e2e-001",
	}})
	client := authsdk.NewSDKClient(baseURL)

	jwks, err := client.GetJWKS(context.Background())
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "sembuddy-e2e-001", jwks.Keys[0].Kid)
	require.Equal(t, "OKP", jwks.Keys[0].Kty)
	require.Equal(t, "EdDSA", jwks.Keys[0].Alg)

	// Tokens signed with the generated key verify end to end.
	session := registerAndLogin(t, client, "dave", "p@ss", "student")
	_, err = session.Me(context.Background())
	require.NoError(t, err)
}
