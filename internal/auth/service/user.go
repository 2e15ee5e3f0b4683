package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vvcoe/sembuddy/internal/auth/domain"
	"github.com/vvcoe/sembuddy/internal/auth/store"
	"github.com/vvcoe/sembuddy/pkg/slogx"
)

type UserService struct {
	Store store.Store
}

// Dashboard is the admin overview.
type Dashboard struct {
	Message string
	Counts  map[domain.Role]int64
	Total   int64
}

// Me returns the user behind identifier.
func (s *UserService) Me(ctx context.Context, identifier string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByIdentifier(ctx, identifier)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// UpdateDisplayName changes the caller's display name and returns the
// updated user.
func (s *UserService) UpdateDisplayName(ctx context.Context, identifier, name string) (domain.User, error) {
	if err := domain.ValidateDisplayName(name); err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := s.Store.Users().UpdateDisplayName(ctx, identifier, name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return s.Me(ctx, identifier)
}

// UpdateRole sets the role of the user named by identifier. Tokens already
// issued keep their old role until they expire; refresh picks up the new one.
func (s *UserService) UpdateRole(ctx context.Context, identifier, role string) (domain.User, error) {
	r, err := domain.ParseRole(role)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", ErrInvalidRole, err)
	}

	identifier = domain.NormalizeIdentifier(identifier)
	if err := s.Store.Users().UpdateRole(ctx, identifier, r); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("role updated", slog.String("identifier", identifier), slog.String("role", r.String()))
	return s.Me(ctx, identifier)
}

// Dashboard returns live user counts by role.
func (s *UserService) Dashboard(ctx context.Context) (Dashboard, error) {
	counts, err := s.Store.Users().CountByRole(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	return Dashboard{
		Message: "Welcome to the admin dashboard",
		Counts:  counts,
		Total:   total,
	}, nil
}
