//go:build e2e

package auth_test

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vvcoe/sembuddy/pkg/authsdk"
)

/*
 * Container setup and shared assertions for the auth service end-to-end
 * tests. Run with: go test -tags e2e ./test/e2e/...
 */

const (
	testImageName = "sembuddy-auth-test:latest"

	bootstrapToken = "test-bootstrap-token-12345"
	adminID        = "admin"
	adminPassword  = "Admin123!"
)

// TestMain builds the service image once for every test in the package.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Auth Service Docker image...")
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Auth Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/auth/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	_ = exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName).Run()
}

// baseEnv is the service configuration shared by every test. Rate limits
// are raised because tests fire requests much faster than people do.
func baseEnv() map[string]string {
	return map[string]string{
		"BOOTSTRAP_TOKEN":     bootstrapToken,
		"AUTH_DATABASE_FILE":  "/data/auth.db",
		"AUTH_PEPPER_FILE":    "/data/pepper",
		"AUTH_SIGNING_SECRET": "e2e-signing-secret-that-is-at-least-32-bytes",
		"AUTH_ISSUER":         "sembuddy-auth",
		"ENV":                 "test",
		"LOG_LEVEL":           "info",
		"LOG_FORMAT":          "json",

		"RATELIMIT_STRICT_REQUESTS":   "1000",
		"RATELIMIT_STRICT_WINDOW_SEC": "60",
		"RATELIMIT_STRICT_BURST":      "1000",
		"RATELIMIT_MODERATE_REQUESTS": "1000",
		"RATELIMIT_MODERATE_BURST":    "1000",
	}
}

type containerOptions struct {
	env     map[string]string
	network *testcontainers.DockerNetwork
}

// setupAuthContainer starts the service and returns its base URL. The
// container is terminated when the test ends.
func setupAuthContainer(t *testing.T, opts containerOptions) string {
	t.Helper()
	ctx := context.Background()

	env := baseEnv()
	maps.Copy(env, opts.env)

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/readyz").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}
	if opts.network != nil {
		req.Networks = []string{opts.network.Name}
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, port.Port())
}

// newNetwork creates a Docker network removed when the test ends.
func newNetwork(t *testing.T) *testcontainers.DockerNetwork {
	t.Helper()
	ctx := context.Background()

	nw, err := network.New(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = nw.Remove(ctx) })
	return nw
}

// startDependency runs a supporting container reachable as alias on nw.
func startDependency(
	t *testing.T,
	nw *testcontainers.DockerNetwork,
	alias, image string,
	env map[string]string,
	waitFor wait.Strategy,
) {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:          image,
			Env:            env,
			Networks:       []string{nw.Name},
			NetworkAliases: map[string][]string{nw.Name: {alias}},
			WaitingFor:     waitFor,
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })
}

// bootstrapAdmin registers the first admin with the bootstrap token and
// logs in as them.
func bootstrapAdmin(t *testing.T, client *authsdk.SDKClient) *authsdk.Session {
	t.Helper()
	ctx := context.Background()

	_, err := client.RegisterWithBootstrap(ctx, bootstrapToken, authsdk.RegisterRequest{
		Identifier: adminID,
		Password:   adminPassword,
		Role:       "admin",
	})
	require.NoError(t, err)

	session, err := client.AuthenticateWithPassword(ctx, adminID, adminPassword)
	require.NoError(t, err)
	return session
}

func registerAndLogin(t *testing.T, client *authsdk.SDKClient, identifier, password, role string) *authsdk.Session {
	t.Helper()
	ctx := context.Background()

	_, err := client.Register(ctx, authsdk.RegisterRequest{
		Identifier: identifier,
		Password:   password,
		Role:       role,
	})
	require.NoError(t, err)

	session, err := client.AuthenticateWithPassword(ctx, identifier, password)
	require.NoError(t, err)
	return session
}

func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
