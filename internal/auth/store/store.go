package store

import (
	"context"
	"errors"
	"time"

	"github.com/vvcoe/sembuddy/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Repositories hang off it as methods so a Tx can expose the
// same repos bound to the transaction, and so nobody opens a transaction
// inside a transaction by accident.
type Store interface {
	Users() Users
	Revocations() Revocations

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, rolling back if fn returns an error
	// and committing otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by its ULID.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByIdentifier looks a user up by their normalised login name.
	GetUserByIdentifier(ctx context.Context, identifier string) (domain.User, error)

	// CreateUser inserts a new user. A taken identifier yields
	// ErrAlreadyExists; existing rows are never overwritten.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateRole changes a user's role and bumps updated_at.
	UpdateRole(ctx context.Context, identifier string, role domain.Role) error

	UpdateDisplayName(ctx context.Context, identifier, displayName string) error

	// UpdatePasswordHash replaces the stored hash, used to upgrade old
	// hashes on login.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	// CountByRole returns the number of users per role. Roles without users
	// are present with a zero count.
	CountByRole(ctx context.Context) (map[domain.Role]int64, error)

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

// Revocations is the set of token ids invalidated before their expiry.
type Revocations interface {
	// Revoke records jti as revoked until expiresAt. It reports true only
	// for the caller that inserted the record, so two concurrent revokes of
	// the same jti have exactly one winner.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) (bool, error)

	IsRevoked(ctx context.Context, jti string) (bool, error)

	// DeleteExpired purges records whose token has expired by now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// WithRevocations returns s with its revocation set replaced by r, for
// deployments that keep revocations outside the database (e.g. Redis).
// Transactions started from the result keep using r.
func WithRevocations(s Store, r Revocations) Store {
	return &overlay{Store: s, revocations: r}
}

type overlay struct {
	Store
	revocations Revocations
}

func (o *overlay) Revocations() Revocations { return o.revocations }

func (o *overlay) Tx(ctx context.Context) (Tx, error) {
	tx, err := o.Store.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &txOverlay{Store: tx, tx: tx, revocations: o.revocations}, nil
}

func (o *overlay) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	return o.Store.WithTx(ctx, func(tx Tx) error {
		return fn(&txOverlay{Store: tx, tx: tx, revocations: o.revocations})
	})
}

// txOverlay embeds the transaction as a Store; embedding Tx directly would
// shadow the Tx method with a field of the same name.
type txOverlay struct {
	Store
	tx          Tx
	revocations Revocations
}

func (t *txOverlay) Revocations() Revocations { return t.revocations }
func (t *txOverlay) Commit() error            { return t.tx.Commit() }
func (t *txOverlay) Rollback() error          { return t.tx.Rollback() }
