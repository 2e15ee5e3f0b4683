package http

import (
	"encoding/json"
	"net/http"

	"github.com/vvcoe/sembuddy/pkg/authsdk"
	"github.com/vvcoe/sembuddy/pkg/jwtx"
)

// JWKSHandler publishes the verification keys. With HS256 the set is
// empty; the shared secret is never exposed.
//
//	@Summary		Get JWKS
//	@Description	Returns the JSON Web Key Set used to verify access tokens offline.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	authsdk.JWKSResponse	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get].
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(authsdk.JWKSResponse(keys.PublicJWKS()))
	}
}
