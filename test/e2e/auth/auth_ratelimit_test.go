//go:build e2e

package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vvcoe/sembuddy/pkg/authsdk"
)

// TestLoginRateLimit checks that repeated guesses for one identifier are
// throttled while other identifiers from the same address still work.
func TestLoginRateLimit(t *testing.T) {
	baseURL := setupAuthContainer(t, containerOptions{env: map[string]string{
		"RATELIMIT_STRICT_REQUESTS": "5",
		"RATELIMIT_STRICT_BURST":    "5",
	}})
	client := authsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	for i := range 5 {
		_, err := client.Login(ctx, "victim", "guess")
		require.ErrorIs(t, err, authsdk.ErrInvalidCredentials, "attempt %d", i+1)
	}

	_, err := client.Login(ctx, "victim", "guess")
	require.ErrorIs(t, err, authsdk.ErrRateLimited)

	_, err = client.Login(ctx, "someone-else", "guess")
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials, "other identifiers are not locked out")
}
