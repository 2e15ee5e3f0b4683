//go:build e2e

package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vvcoe/sembuddy/pkg/authsdk"
)

func TestStudentFlow(t *testing.T) {
	baseURL := setupAuthContainer(t, containerOptions{})
	client := authsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	alice := registerAndLogin(t, client, "alice", "p@ss", "student")

	me, err := alice.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", me.Identifier)
	require.Equal(t, "student", me.Role)

	_, err = alice.AdminDashboard(ctx)
	require.ErrorIs(t, err, authsdk.ErrAccessDenied)

	_, err = client.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)
	_, err = client.Login(ctx, "nobody", "wrong")
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)
}

func TestAdminFlow(t *testing.T) {
	baseURL := setupAuthContainer(t, containerOptions{})
	client := authsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	_, err := client.Register(ctx, authsdk.RegisterRequest{Identifier: "eve", Password: "x", Role: "admin"})
	require.ErrorIs(t, err, authsdk.ErrAccessDenied)

	admin := bootstrapAdmin(t, client)
	registerAndLogin(t, client, "bob", "p@ss", "student")

	dash, err := admin.AdminDashboard(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, dash.Stats.TotalUsers)
	require.EqualValues(t, 1, dash.Stats.UsersByRole["admin"])
	require.EqualValues(t, 1, dash.Stats.UsersByRole["student"])

	user, err := admin.UpdateRole(ctx, "bob", "staff")
	require.NoError(t, err)
	require.Equal(t, "staff", user.Role)
}

func TestRefreshRotationAndLogout(t *testing.T) {
	// Rotation and blacklisting are on by default.
	baseURL := setupAuthContainer(t, containerOptions{})
	client := authsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	session := registerAndLogin(t, client, "carol", "p@ss", "staff")
	original := session.RefreshToken()

	rotated, err := client.Refresh(ctx, original)
	require.NoError(t, err)
	require.NotEqual(t, original, rotated.RefreshToken)

	_, err = client.Refresh(ctx, original)
	require.ErrorIs(t, err, authsdk.ErrInvalidToken, "a rotated refresh token is single use")

	fresh := client.NewSessionFromTokens(rotated.AccessToken, rotated.RefreshToken, rotated.ExpiresIn)
	require.NoError(t, fresh.Logout(ctx))

	_, err = client.Refresh(ctx, rotated.RefreshToken)
	require.ErrorIs(t, err, authsdk.ErrInvalidToken)
}
