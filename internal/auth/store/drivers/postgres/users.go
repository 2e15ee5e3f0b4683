package postgres

import (
	"context"
	"time"

	"github.com/vvcoe/sembuddy/internal/auth/domain"
	"github.com/vvcoe/sembuddy/internal/auth/store"
)

const userColumns = `id, identifier, display_name, password_hash, role, created_at, updated_at`

type usersRepo struct {
	db DBTX
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *usersRepo) GetUserByIdentifier(ctx context.Context, identifier string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE identifier = $1`
	return scanUser(r.db.QueryRow(ctx, query, identifier))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	const query = `
        INSERT INTO users (id, identifier, display_name, password_hash, role, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $6)`

	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.Exec(ctx, query,
		u.ID,
		u.Identifier,
		u.DisplayName,
		u.PasswordHash,
		u.Role.String(),
		createdAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateRole(ctx context.Context, identifier string, role domain.Role) error {
	const query = `UPDATE users SET role = $1, updated_at = NOW() WHERE identifier = $2`
	return r.execOne(ctx, query, role.String(), identifier)
}

func (r *usersRepo) UpdateDisplayName(ctx context.Context, identifier, displayName string) error {
	const query = `UPDATE users SET display_name = $1, updated_at = NOW() WHERE identifier = $2`
	return r.execOne(ctx, query, displayName, identifier)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	const query = `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`
	return r.execOne(ctx, query, newHash, userID)
}

func (r *usersRepo) CountByRole(ctx context.Context) (map[domain.Role]int64, error) {
	const query = `SELECT role, COUNT(*) FROM users GROUP BY role`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.Role]int64, len(domain.Roles()))
	for _, role := range domain.Roles() {
		counts[role] = 0
	}
	for rows.Next() {
		var (
			role string
			n    int64
		)
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		counts[domain.Role(role)] = n
	}
	return counts, rows.Err()
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	const query = `SELECT NOT EXISTS (SELECT 1 FROM users)`
	var empty bool
	err := r.db.QueryRow(ctx, query).Scan(&empty)
	return empty, err
}

func (r *usersRepo) execOne(ctx context.Context, query string, args ...any) error {
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
