package httpx

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/vvcoe/sembuddy/pkg/jwtx"
	"github.com/vvcoe/sembuddy/pkg/slogx"
)

// TokenVerifier is satisfied by *jwtx.Verifier.
type TokenVerifier interface {
	VerifyType(ctx context.Context, raw, tokenType string, now time.Time) (jwtx.Claims, error)
}

// AuthnOptions configures AuthnMiddleware.
type AuthnOptions struct {
	Verifier TokenVerifier

	// Sessions, when set, is consulted if there is no Authorization header.
	Sessions *SessionStore

	// Now defaults to time.Now.
	Now func() time.Time
}

// AuthnMiddleware requires a valid access token, from the Authorization
// header or the session cookie, and stores its claims in the request
// context. Refresh tokens are rejected.
func AuthnMiddleware(opts AuthnOptions) Middleware {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r)
			if !ok && opts.Sessions != nil {
				raw = opts.Sessions.Token(r)
			}
			if raw == "" {
				WriteBearerError(w, "missing bearer token")
				return
			}

			claims, err := opts.Verifier.VerifyType(ctx, raw, jwtx.TokenTypeAccess, now())
			if err != nil {
				if !jwtx.IsRejection(err) {
					log.Error("token verification unavailable", "err", err)
					WriteErrorJSON(w, http.StatusInternalServerError, "server_error", "internal server error")
					return
				}
				log.Info("token rejected", "err", err)
				WriteBearerError(w, "token verification failed")
				return
			}

			ctx = WithClaims(ctx, claims)
			ctx = slogx.WithSubject(ctx, claims.Subject, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
