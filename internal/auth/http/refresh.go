package http

import (
	"net/http"

	"github.com/vvcoe/sembuddy/internal/auth/service"
	"github.com/vvcoe/sembuddy/pkg/authsdk"
	"github.com/vvcoe/sembuddy/pkg/httpx"
	"github.com/vvcoe/sembuddy/pkg/slogx"
)

// RefreshHandler serves POST /v1/auth/refresh.
type RefreshHandler struct {
	AuthService *service.AuthService
	Sessions    *httpx.SessionStore
}

// ServeHTTP godoc
//
//	@Summary		Refresh tokens
//	@Description	Exchanges a refresh token for a new access token. The role is re-read from the user record.
//	@Description	When rotation is enabled a new refresh token is returned and the old one stops working.
//	@Tags			Auth
//	@Accept			json
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			body	body		authsdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	authsdk.TokenResponse	"access_token, refresh_token (when rotated), token_type, expires_in"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Malformed body"
//	@Failure		401		{object}	authsdk.ErrorResponse	"invalid_token"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Router			/v1/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshRequest
	if err := decodeBody(w, r, &req); err != nil || req.RefreshToken == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.AuthService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// A cookie session follows its access token.
	if h.Sessions != nil && h.Sessions.Token(r) != "" {
		if err := h.Sessions.SaveToken(w, r, pair.AccessToken, pair.ExpiresIn); err != nil {
			slogx.FromContext(r.Context()).Warn("failed to save session cookie", "err", err)
		}
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}
