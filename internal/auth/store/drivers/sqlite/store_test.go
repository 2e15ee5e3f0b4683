package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vvcoe/sembuddy/internal/auth/domain"
	"github.com/vvcoe/sembuddy/internal/auth/store"
	"github.com/vvcoe/sembuddy/internal/auth/store/drivers/sqlite"
	"github.com/vvcoe/sembuddy/pkg/idx"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	// A second run is a no-op.
	require.NoError(t, s.ApplyMigrations())
	return s
}

func newUser(identifier string, role domain.Role) domain.User {
	return domain.User{
		ID:           idx.New().String(),
		Identifier:   identifier,
		DisplayName:  "Display " + identifier,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		Role:         role,
		CreatedAt:    time.Unix(1_750_000_000, 0).UTC(),
	}
}

func TestDSN(t *testing.T) {
	require.Contains(t, sqlite.DSN("/tmp/a.db"), "file:/tmp/a.db?")
	require.Contains(t, sqlite.DSN("/tmp/a.db"), "journal_mode(WAL)")
	require.NotContains(t, sqlite.DSN(":memory:"), "journal_mode")
	require.Equal(t, "file:x.db?mode=ro", sqlite.DSN("file:x.db?mode=ro"), "explicit DSNs pass through")
}

func TestUsers_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	empty, err := s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	u := newUser("alice", domain.RoleStudent)
	require.NoError(t, s.Users().CreateUser(ctx, u))

	got, err := s.Users().GetUserByIdentifier(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, "Display alice", got.DisplayName)
	require.Equal(t, domain.RoleStudent, got.Role)
	require.Equal(t, u.PasswordHash, got.PasswordHash)
	require.True(t, u.CreatedAt.Equal(got.CreatedAt))

	byID, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, got, byID)

	empty, err = s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.False(t, empty)

	_, err = s.Users().GetUserByIdentifier(ctx, "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers_DuplicateIdentifier(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	first := newUser("alice", domain.RoleStudent)
	require.NoError(t, s.Users().CreateUser(ctx, first))

	second := newUser("alice", domain.RoleAdmin)
	second.PasswordHash = "other"
	require.ErrorIs(t, s.Users().CreateUser(ctx, second), store.ErrAlreadyExists)

	got, err := s.Users().GetUserByIdentifier(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID, "existing user is never overwritten")
	require.Equal(t, domain.RoleStudent, got.Role)
}

func TestUsers_ConcurrentDuplicateRegistration(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Users().CreateUser(ctx, newUser("carol", domain.RoleStaff))
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, store.ErrAlreadyExists):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, successes.Load())
	require.EqualValues(t, 7, conflicts.Load())
}

func TestUsers_RoleCheckConstraint(t *testing.T) {
	s := newStore(t)
	require.Error(t, s.Users().CreateUser(context.Background(), newUser("mallory", domain.Role("root"))))
}

func TestUsers_Updates(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	u := newUser("bob", domain.RoleStudent)
	require.NoError(t, s.Users().CreateUser(ctx, u))

	require.NoError(t, s.Users().UpdateRole(ctx, "bob", domain.RoleStaff))
	require.NoError(t, s.Users().UpdateDisplayName(ctx, "bob", "Bobby"))
	require.NoError(t, s.Users().UpdatePasswordHash(ctx, u.ID, "new-hash"))

	got, err := s.Users().GetUserByIdentifier(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, domain.RoleStaff, got.Role)
	require.Equal(t, "Bobby", got.DisplayName)
	require.Equal(t, "new-hash", got.PasswordHash)
	require.True(t, got.UpdatedAt.After(got.CreatedAt))

	require.ErrorIs(t, s.Users().UpdateRole(ctx, "nobody", domain.RoleAdmin), store.ErrNotFound)
	require.ErrorIs(t, s.Users().UpdateDisplayName(ctx, "nobody", "x"), store.ErrNotFound)
	require.ErrorIs(t, s.Users().UpdatePasswordHash(ctx, "missing-id", "x"), store.ErrNotFound)
}

func TestUsers_CountByRole(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	counts, err := s.Users().CountByRole(ctx)
	require.NoError(t, err)
	require.Equal(t, map[domain.Role]int64{
		domain.RoleAdmin:   0,
		domain.RoleStaff:   0,
		domain.RoleStudent: 0,
	}, counts)

	for i, role := range []domain.Role{domain.RoleStudent, domain.RoleStudent, domain.RoleStaff, domain.RoleAdmin, domain.RoleStudent} {
		require.NoError(t, s.Users().CreateUser(ctx, newUser(string(rune('a'+i))+"-user", role)))
	}

	counts, err = s.Users().CountByRole(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, counts[domain.RoleAdmin])
	require.EqualValues(t, 1, counts[domain.RoleStaff])
	require.EqualValues(t, 3, counts[domain.RoleStudent])
}

func TestRevocations(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	now := time.Unix(1_750_000_000, 0).UTC()

	revoked, err := s.Revocations().IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	first, err := s.Revocations().Revoke(ctx, "jti-1", now.Add(time.Hour))
	require.NoError(t, err)
	require.True(t, first)

	again, err := s.Revocations().Revoke(ctx, "jti-1", now.Add(time.Hour))
	require.NoError(t, err)
	require.False(t, again, "second revoke of the same jti loses")

	revoked, err = s.Revocations().IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	_, err = s.Revocations().Revoke(ctx, "jti-old", now.Add(-time.Minute))
	require.NoError(t, err)

	n, err := s.Revocations().DeleteExpired(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	revoked, err = s.Revocations().IsRevoked(ctx, "jti-old")
	require.NoError(t, err)
	require.False(t, revoked)

	revoked, err = s.Revocations().IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked, "unexpired records survive housekeeping")
}

func TestRevocations_ConcurrentRevokeHasOneWinner(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	exp := time.Now().Add(time.Hour)

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.Revocations().Revoke(ctx, "shared-jti", exp)
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

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Users().CreateUser(ctx, newUser("dave", domain.RoleStudent)))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Users().GetUserByIdentifier(ctx, "dave")
	require.ErrorIs(t, err, store.ErrNotFound, "rolled back")

	err = s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, newUser("dave", domain.RoleStudent)); err != nil {
			return err
		}
		_, err := tx.Revocations().Revoke(ctx, "jti-dave", time.Now().Add(time.Hour))
		return err
	})
	require.NoError(t, err)

	_, err = s.Users().GetUserByIdentifier(ctx, "dave")
	require.NoError(t, err)
	revoked, err := s.Revocations().IsRevoked(ctx, "jti-dave")
	require.NoError(t, err)
	require.True(t, revoked)
}

type fakeRevocations struct{ store.Revocations }

func TestWithRevocations(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	fake := fakeRevocations{}

	wrapped := store.WithRevocations(s, fake)
	require.Equal(t, fake, wrapped.Revocations())

	require.NoError(t, wrapped.WithTx(ctx, func(tx store.Tx) error {
		require.Equal(t, fake, tx.Revocations())
		return tx.Users().CreateUser(ctx, newUser("erin", domain.RoleStudent))
	}))

	_, err := wrapped.Users().GetUserByIdentifier(ctx, "erin")
	require.NoError(t, err)
}

func TestWithRevocations_ExplicitTx(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	fake := fakeRevocations{}

	tx, err := store.WithRevocations(s, fake).Tx(ctx)
	require.NoError(t, err)
	require.Equal(t, fake, tx.Revocations())
	require.NoError(t, tx.Users().CreateUser(ctx, newUser("frank", domain.RoleStaff)))
	require.NoError(t, tx.Commit())

	got, err := s.Users().GetUserByIdentifier(ctx, "frank")
	require.NoError(t, err)
	require.Equal(t, domain.RoleStaff, got.Role)

	tx, err = store.WithRevocations(s, fake).Tx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Users().CreateUser(ctx, newUser("gina", domain.RoleStudent)))
	require.NoError(t, tx.Rollback())

	_, err = s.Users().GetUserByIdentifier(ctx, "gina")
	require.ErrorIs(t, err, store.ErrNotFound)
}
