//go:build e2e

package redis_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	redisstore "github.com/vvcoe/sembuddy/internal/auth/store/drivers/redis"
)

func newRevocations(t *testing.T) *redisstore.Revocations {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	r, err := redisstore.New(ctx, redisstore.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRevocations(t *testing.T) {
	ctx := context.Background()
	r := newRevocations(t)
	require.NoError(t, r.Ping(ctx))

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	first, err := r.Revoke(ctx, "jti-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.True(t, first)

	again, err := r.Revoke(ctx, "jti-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.False(t, again)

	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	n, err := r.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestRevocations_ExpireWithToken(t *testing.T) {
	ctx := context.Background()
	r := newRevocations(t)

	_, err := r.Revoke(ctx, "short", time.Now().Add(time.Second))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		revoked, err := r.IsRevoked(ctx, "short")
		return err == nil && !revoked
	}, 5*time.Second, 100*time.Millisecond)
}

func TestRevocations_ConcurrentRevokeHasOneWinner(t *testing.T) {
	ctx := context.Background()
	r := newRevocations(t)

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := r.Revoke(ctx, "shared", time.Now().Add(time.Hour))
			if err != nil {
				t.Errorf("revoke: %v", err)
				return
			}
			if ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, winners.Load())
}
