package http

import (
	"net/http"
	"time"

	"github.com/vvcoe/sembuddy/internal/auth/domain"
	"github.com/vvcoe/sembuddy/internal/auth/service"
	"github.com/vvcoe/sembuddy/pkg/authsdk"
	"github.com/vvcoe/sembuddy/pkg/httpx"
	"github.com/vvcoe/sembuddy/pkg/slogx"
)

// LoginHandler serves POST /v1/auth/login.
type LoginHandler struct {
	AuthService *service.AuthService

	// Sessions, when set, also receives the access token as a cookie.
	Sessions *httpx.SessionStore
}

// ServeHTTP godoc
//
//	@Summary		Log in
//	@Description	Exchanges an identifier and password for an access token and a refresh token.
//	@Description	An unknown identifier and a wrong password produce the same response.
//	@Tags			Auth
//	@Accept			json
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			body	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.TokenResponse	"access_token, refresh_token, token_type, expires_in"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Malformed body"
//	@Failure		401		{object}	authsdk.ErrorResponse	"invalid_credentials"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Header			200		{string}	Cache-Control			"no-store"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.LoginRequest
	if err := decodeBody(w, r, &req); err != nil || req.Identifier == "" || req.Password == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, user, err := h.AuthService.Login(ctx, req.Identifier, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if h.Sessions != nil {
		if err := h.Sessions.SaveToken(w, r, pair.AccessToken, pair.ExpiresIn); err != nil {
			log.Warn("failed to save session cookie", "err", err)
		}
	}

	ctx = slogx.WithSubject(ctx, user.Identifier, user.Role.String())
	slogx.FromContext(ctx).Info("login succeeded")

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

func tokenResponse(pair domain.TokenPair) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(pair.ExpiresIn / time.Second),
	}
}
