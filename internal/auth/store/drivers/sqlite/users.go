package sqlite

import (
	"context"
	"time"

	"github.com/vvcoe/sembuddy/internal/auth/domain"
	"github.com/vvcoe/sembuddy/internal/auth/store"
)

type usersRepo struct {
	q *Queries
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row, err := r.q.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) GetUserByIdentifier(ctx context.Context, identifier string) (domain.User, error) {
	row, err := r.q.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	err := r.q.CreateUser(ctx, CreateUserParams{
		ID:           u.ID,
		Identifier:   u.Identifier,
		DisplayName:  u.DisplayName,
		PasswordHash: u.PasswordHash,
		Role:         u.Role.String(),
		CreatedAt:    createdAt.UTC(),
	})
	return mapConstraint(err)
}

func (r *usersRepo) UpdateRole(ctx context.Context, identifier string, role domain.Role) error {
	n, err := r.q.UpdateUserRole(ctx, identifier, role.String(), time.Now().UTC())
	return rowsOrNotFound(n, err)
}

func (r *usersRepo) UpdateDisplayName(ctx context.Context, identifier, displayName string) error {
	n, err := r.q.UpdateUserDisplayName(ctx, identifier, displayName, time.Now().UTC())
	return rowsOrNotFound(n, err)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	n, err := r.q.UpdateUserPasswordHash(ctx, userID, newHash, time.Now().UTC())
	return rowsOrNotFound(n, err)
}

func (r *usersRepo) CountByRole(ctx context.Context) (map[domain.Role]int64, error) {
	rows, err := r.q.CountUsersByRole(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.Role]int64, len(domain.Roles()))
	for _, role := range domain.Roles() {
		counts[role] = 0
	}
	for _, row := range rows {
		counts[domain.Role(row.Role)] = row.Count
	}
	return counts, nil
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	count, err := r.q.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func rowsOrNotFound(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
