package postgres

import (
	"context"
	"time"
)

type revocationsRepo struct {
	db DBTX
}

func (r *revocationsRepo) Revoke(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	const query = `
        INSERT INTO revoked_tokens (jti, expires_at, revoked_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (jti) DO NOTHING`

	cmd, err := r.db.Exec(ctx, query, jti, expiresAt.UTC())
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *revocationsRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = $1)`
	var found bool
	err := r.db.QueryRow(ctx, query, jti).Scan(&found)
	return found, err
}

func (r *revocationsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM revoked_tokens WHERE expires_at <= $1`
	cmd, err := r.db.Exec(ctx, query, now.UTC())
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
