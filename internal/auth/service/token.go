package service

import (
	"errors"
	"time"

	"github.com/vvcoe/sembuddy/internal/auth/domain"
	"github.com/vvcoe/sembuddy/pkg/jwtx"
)

var (
	ErrInvalidCredentials  = errors.New("invalid_credentials")
	ErrInvalidRefresh      = errors.New("invalid_refresh_token")
	ErrInvalidRequest      = errors.New("invalid_request")
	ErrDuplicateIdentifier = errors.New("duplicate_identifier")
	ErrInvalidRole         = errors.New("invalid_role")
	ErrAdminRegistration   = errors.New("admin_registration_forbidden")
	ErrUserNotFound        = errors.New("user_not_found")
)

// TokenService signs tokens with the key held by KeyManager.
type TokenService struct {
	KeyManager *jwtx.KeyManager
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Issue signs a token of tokenType for subject carrying role, valid from
// now for ttl.
func (s *TokenService) Issue(
	subject string,
	role domain.Role,
	tokenType string,
	now time.Time,
	ttl time.Duration,
) (string, jwtx.Claims, error) {
	return s.issue(jwtx.NewClaims(subject, role.String(), tokenType, "", s.Issuer, now, ttl))
}

// IssuePair signs an access token and, if withRefresh is set, a refresh
// token for u.
func (s *TokenService) IssuePair(u domain.User, now time.Time, withRefresh bool) (domain.TokenPair, error) {
	access, claims, err := s.issue(jwtx.NewClaims(
		u.Identifier,
		u.Role.String(),
		jwtx.TokenTypeAccess,
		u.DisplayName,
		s.Issuer,
		now,
		s.accessTTL(),
	))
	if err != nil {
		return domain.TokenPair{}, err
	}

	pair := domain.TokenPair{
		AccessToken: access,
		ExpiresIn:   s.accessTTL(),
		AccessJTI:   claims.ID,
	}
	if withRefresh {
		pair.RefreshToken, _, err = s.Issue(u.Identifier, u.Role, jwtx.TokenTypeRefresh, now, s.refreshTTL())
		if err != nil {
			return domain.TokenPair{}, err
		}
	}
	return pair, nil
}

func (s *TokenService) issue(claims jwtx.Claims) (string, jwtx.Claims, error) {
	raw, err := s.KeyManager.Signer.Sign(claims)
	if err != nil {
		return "", jwtx.Claims{}, err
	}
	return raw, claims, nil
}

func (s *TokenService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *TokenService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}
