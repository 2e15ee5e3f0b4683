package sqlite

import (
	"context"
	"time"
)

type revocationsRepo struct {
	q *Queries
}

func (r *revocationsRepo) Revoke(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	n, err := r.q.InsertRevocation(ctx, jti, expiresAt, time.Now())
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *revocationsRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return r.q.IsRevoked(ctx, jti)
}

func (r *revocationsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredRevocations(ctx, now)
}
