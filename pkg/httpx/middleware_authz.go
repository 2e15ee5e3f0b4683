package httpx

import (
	"net/http"

	"github.com/vvcoe/sembuddy/pkg/jwtx"
	"github.com/vvcoe/sembuddy/pkg/slogx"
)

// Authorize lets the request through only when allow approves the claims
// stored by AuthnMiddleware; otherwise 403 access_denied. It must run
// after AuthnMiddleware.
func Authorize(allow func(jwtx.Claims) bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				WriteBearerError(w, "missing bearer token")
				return
			}
			if !allow(claims) {
				slogx.FromContext(r.Context()).Info("access denied", "path", r.URL.Path)
				WriteErrorJSON(w, http.StatusForbidden, "access_denied", "access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
