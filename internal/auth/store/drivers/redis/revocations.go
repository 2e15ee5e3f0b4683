// Package redis keeps the token revocation set in Redis so every replica
// sees a revocation the moment it happens. Keys expire with the token they
// revoke, so no housekeeping is needed.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "sembuddy:revoked:"

// Options is the subset of go-redis options the service exposes.
type Options struct {
	Addr     string
	Password string
	DB       int
}

type Revocations struct {
	client *redis.Client
	now    func() time.Time
}

// New connects to Redis. The connection is checked with a ping so a
// misconfigured address fails at startup rather than on the first request.
func New(ctx context.Context, opts Options) (*Revocations, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewFromClient(client), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client) *Revocations {
	return &Revocations{client: client, now: time.Now}
}

// Revoke stores jti with SET NX so only the first caller wins. The key
// lives until the token would have expired anyway.
func (r *Revocations) Revoke(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		ttl = time.Second
	}
	return r.client.SetNX(ctx, keyPrefix+jti, r.now().Unix(), ttl).Result()
}

func (r *Revocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := r.client.Get(ctx, keyPrefix+jti).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, err
	}
}

// DeleteExpired is a no-op: Redis expires keys on its own.
func (r *Revocations) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func (r *Revocations) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Revocations) Close() error {
	return r.client.Close()
}
