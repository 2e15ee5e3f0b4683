package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vvcoe/sembuddy/internal/auth/domain"
	"github.com/vvcoe/sembuddy/internal/auth/store"
	"github.com/vvcoe/sembuddy/pkg/cryptox"
	"github.com/vvcoe/sembuddy/pkg/idx"
	"github.com/vvcoe/sembuddy/pkg/jwtx"
	"github.com/vvcoe/sembuddy/pkg/slogx"
)

// AuthService runs login, registration, refresh and logout.
type AuthService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
	Tokens *TokenService

	// RotateRefreshTokens makes /refresh hand out a new refresh token.
	RotateRefreshTokens bool
	// BlacklistAfterRotation revokes the presented refresh token when a new
	// one is issued. Only meaningful with RotateRefreshTokens.
	BlacklistAfterRotation bool

	// BootstrapToken, when set, lets a caller without an admin token
	// register an admin (used to create the first one).
	BootstrapToken string

	// Clock defaults to time.Now.
	Clock func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// RegisterRequest is the input to Register.
type RegisterRequest struct {
	Identifier  string
	Password    string
	DisplayName string
	Role        string // empty means student

	// Caller is the verified bearer of the request, if any.
	Caller *jwtx.Claims
	// BootstrapToken as presented by the caller.
	BootstrapToken string
}

func (s *AuthService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// fallbackDummyHash is a well-formed argon2id hash with the default
// parameters that no password matches. It stands in when the dummy hash
// cannot be generated.
const fallbackDummyHash = "$argon2id$v=19$m=19456,t=2,p=1$c2VtYnVkZHktZHVtbXkhIQ$AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8"

// dummy returns a hash of a random password. Unknown identifiers are
// verified against it so they cost as much as a wrong password.
func (s *AuthService) dummy(l *slog.Logger) string {
	s.dummyOnce.Do(func() {
		s.dummyHash = fallbackDummyHash

		pw, err := cryptox.GenerateToken(cryptox.TokenSize128)
		if err != nil {
			l.Error("failed to generate dummy password, using fallback hash", slog.Any("error", err))
			return
		}
		hash, err := s.Hasher.Hash(pw)
		if err != nil {
			l.Error("failed to hash dummy password, using fallback hash", slog.Any("error", err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// Login checks identifier and password and issues a token pair. Unknown
// identifiers and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (domain.TokenPair, domain.User, error) {
	l := slogx.FromContext(ctx)
	identifier = domain.NormalizeIdentifier(identifier)

	if identifier == "" || password == "" {
		return domain.TokenPair{}, domain.User{}, ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetUserByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = s.Hasher.Verify(password, s.dummy(l))
			l.Info("login failed", slog.String("reason", "unknown_identifier"))
			return domain.TokenPair{}, domain.User{}, ErrInvalidCredentials
		}
		return domain.TokenPair{}, domain.User{}, err
	}

	if err := s.Hasher.Verify(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrInvalidHashFormat) {
			l.Error("stored password hash is unreadable", slog.String("user_id", user.ID), slog.Any("error", err))
		} else {
			l.Info("login failed", slog.String("reason", "password_mismatch"), slog.String("user_id", user.ID))
		}
		return domain.TokenPair{}, domain.User{}, ErrInvalidCredentials
	}

	if s.Hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user, password)
	}

	pair, err := s.Tokens.IssuePair(user, s.now(), true)
	if err != nil {
		return domain.TokenPair{}, domain.User{}, err
	}
	l.Info("login succeeded", slog.String("user_id", user.ID), slog.String("role", user.Role.String()))
	return pair, user, nil
}

// rehash upgrades a hash made with an older algorithm or weaker parameters.
// Failure is logged and otherwise ignored; the old hash still verifies.
func (s *AuthService) rehash(ctx context.Context, user domain.User, password string) {
	l := slogx.FromContext(ctx)

	hash, err := s.Hasher.Hash(password)
	if err == nil {
		err = s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		l.Warn("password rehash failed", slog.String("user_id", user.ID), slog.Any("error", err))
		return
	}
	l.Info("password hash upgraded", slog.String("user_id", user.ID), slog.String("algorithm", s.Hasher.Algorithm()))
}

// Register creates a new user. Students and staff may register
// themselves; admins need an admin caller or the bootstrap token.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (domain.User, error) {
	l := slogx.FromContext(ctx)

	identifier := domain.NormalizeIdentifier(req.Identifier)
	if err := domain.ValidateIdentifier(identifier); err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := domain.ValidateDisplayName(req.DisplayName); err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	role := domain.RoleStudent
	if req.Role != "" {
		var err error
		if role, err = domain.ParseRole(req.Role); err != nil {
			return domain.User{}, fmt.Errorf("%w: %w", ErrInvalidRole, err)
		}
	}

	if !role.SelfService() && !s.mayCreateAdmin(req) {
		l.Warn("admin registration refused", slog.String("identifier", identifier))
		return domain.User{}, ErrAdminRegistration
	}

	hash, err := s.Hasher.Hash(req.Password)
	if err != nil {
		return domain.User{}, err
	}

	now := s.now().UTC()
	user := domain.User{
		ID:           idx.NewAt(now).String(),
		Identifier:   identifier,
		DisplayName:  req.DisplayName,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrDuplicateIdentifier
		}
		return domain.User{}, err
	}

	l.Info("user registered", slog.String("user_id", user.ID), slog.String("role", role.String()))
	return user, nil
}

func (s *AuthService) mayCreateAdmin(req RegisterRequest) bool {
	if req.Caller != nil && Authorize(*req.Caller, domain.RoleAdmin).IsAllowed() {
		return true
	}
	return s.BootstrapToken != "" &&
		subtle.ConstantTimeCompare([]byte(req.BootstrapToken), []byte(s.BootstrapToken)) == 1
}

// Refresh exchanges a refresh token for a new access token. The user is
// reloaded so role changes take effect. With rotation on a new refresh
// token is returned too, and with blacklisting the old one is revoked in
// the same step; of two concurrent refreshes with the same token only one
// succeeds.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	now := s.now()

	claims, err := s.Tokens.KeyManager.Verifier.VerifyType(ctx, refreshToken, jwtx.TokenTypeRefresh, now)
	if err != nil {
		if jwtx.IsRejection(err) {
			l.Info("refresh token rejected", slog.Any("error", err))
			return domain.TokenPair{}, ErrInvalidRefresh
		}
		return domain.TokenPair{}, err
	}

	user, err := s.Store.Users().GetUserByIdentifier(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidRefresh
		}
		return domain.TokenPair{}, err
	}

	rotate := s.RotateRefreshTokens
	if rotate && s.BlacklistAfterRotation {
		won, err := s.Store.Revocations().Revoke(ctx, claims.ID, claims.ExpiresAtTime())
		if err != nil {
			return domain.TokenPair{}, err
		}
		if !won {
			l.Warn("refresh token reused", slog.String("jti", claims.ID), slog.String("user_id", user.ID))
			return domain.TokenPair{}, ErrInvalidRefresh
		}
	}

	return s.Tokens.IssuePair(user, now, rotate)
}

// Logout revokes the caller's access token and, if given, a refresh
// token belonging to the same subject. Revoking twice is not an error.
func (s *AuthService) Logout(ctx context.Context, access jwtx.Claims, refreshToken string) error {
	l := slogx.FromContext(ctx)

	if _, err := s.Store.Revocations().Revoke(ctx, access.ID, access.ExpiresAtTime()); err != nil {
		return err
	}

	if refreshToken != "" {
		refresh, err := s.Tokens.KeyManager.Verifier.VerifyType(ctx, refreshToken, jwtx.TokenTypeRefresh, s.now())
		switch {
		case errors.Is(err, jwtx.ErrRevoked):
			// already gone
		case err != nil && jwtx.IsRejection(err):
			return ErrInvalidRefresh
		case err != nil:
			return err
		case refresh.Subject != access.Subject:
			return ErrInvalidRefresh
		default:
			if _, err := s.Store.Revocations().Revoke(ctx, refresh.ID, refresh.ExpiresAtTime()); err != nil {
				return err
			}
		}
	}

	l.Info("logged out", slog.String("jti", access.ID))
	return nil
}
