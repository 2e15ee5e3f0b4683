package sqlite

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the statements used by the repositories. Each method maps
// one-to-one onto a SQL statement.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type userRow struct {
	ID           string
	Identifier   string
	DisplayName  string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const userColumns = `id, identifier, display_name, password_hash, role, created_at, updated_at`

func scanUser(row *sql.Row) (userRow, error) {
	var u userRow
	err := row.Scan(
		&u.ID,
		&u.Identifier,
		&u.DisplayName,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

const getUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *Queries) GetUserByID(ctx context.Context, id string) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

const getUserByIdentifier = `SELECT ` + userColumns + ` FROM users WHERE identifier = ?`

func (q *Queries) GetUserByIdentifier(ctx context.Context, identifier string) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByIdentifier, identifier))
}

const createUser = `
INSERT INTO users (id, identifier, display_name, password_hash, role, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

type CreateUserParams struct {
	ID           string
	Identifier   string
	DisplayName  string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) error {
	_, err := q.db.ExecContext(ctx, createUser,
		arg.ID,
		arg.Identifier,
		arg.DisplayName,
		arg.PasswordHash,
		arg.Role,
		arg.CreatedAt,
		arg.CreatedAt,
	)
	return err
}

const updateUserRole = `UPDATE users SET role = ?, updated_at = ? WHERE identifier = ?`

func (q *Queries) UpdateUserRole(ctx context.Context, identifier, role string, now time.Time) (int64, error) {
	return q.execRows(ctx, updateUserRole, role, now, identifier)
}

const updateUserDisplayName = `UPDATE users SET display_name = ?, updated_at = ? WHERE identifier = ?`

func (q *Queries) UpdateUserDisplayName(ctx context.Context, identifier, name string, now time.Time) (int64, error) {
	return q.execRows(ctx, updateUserDisplayName, name, now, identifier)
}

const updateUserPasswordHash = `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`

func (q *Queries) UpdateUserPasswordHash(ctx context.Context, id, hash string, now time.Time) (int64, error) {
	return q.execRows(ctx, updateUserPasswordHash, hash, now, id)
}

const countUsersByRole = `SELECT role, COUNT(*) FROM users GROUP BY role`

type roleCount struct {
	Role  string
	Count int64
}

func (q *Queries) CountUsersByRole(ctx context.Context) ([]roleCount, error) {
	rows, err := q.db.QueryContext(ctx, countUsersByRole)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []roleCount
	for rows.Next() {
		var i roleCount
		if err := rows.Scan(&i.Role, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const countUsers = `SELECT COUNT(*) FROM users`

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countUsers).Scan(&n)
	return n, err
}

const insertRevocation = `
INSERT INTO revoked_tokens (jti, expires_at, revoked_at)
VALUES (?, ?, ?)
ON CONFLICT (jti) DO NOTHING`

func (q *Queries) InsertRevocation(ctx context.Context, jti string, expiresAt, revokedAt time.Time) (int64, error) {
	return q.execRows(ctx, insertRevocation, jti, expiresAt.Unix(), revokedAt.Unix())
}

const isRevoked = `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = ?)`

func (q *Queries) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var found bool
	err := q.db.QueryRowContext(ctx, isRevoked, jti).Scan(&found)
	return found, err
}

const deleteExpiredRevocations = `DELETE FROM revoked_tokens WHERE expires_at <= ?`

func (q *Queries) DeleteExpiredRevocations(ctx context.Context, now time.Time) (int64, error) {
	return q.execRows(ctx, deleteExpiredRevocations, now.Unix())
}

func (q *Queries) execRows(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
