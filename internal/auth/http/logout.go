package http

import (
	"errors"
	"net/http"

	"github.com/vvcoe/sembuddy/internal/auth/service"
	"github.com/vvcoe/sembuddy/pkg/authsdk"
	"github.com/vvcoe/sembuddy/pkg/httpx"
	"github.com/vvcoe/sembuddy/pkg/slogx"
)

// LogoutHandler serves POST /v1/auth/logout.
type LogoutHandler struct {
	AuthService *service.AuthService
	Sessions    *httpx.SessionStore
}

// ServeHTTP godoc
//
//	@Summary		Log out
//	@Description	Revokes the presented access token and, if given, the refresh token. Clears the session cookie.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Param			body	body	authsdk.LogoutRequest	false	"Refresh token to revoke as well"
//	@Success		204		"Logged out"
//	@Failure		401		{object}	authsdk.ErrorResponse	"invalid_token"
//	@Router			/v1/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := httpx.ClaimsFromContext(ctx)
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req authsdk.LogoutRequest
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.AuthService.Logout(ctx, claims, req.RefreshToken); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if h.Sessions != nil {
		if err := h.Sessions.Clear(w, r); err != nil {
			slogx.FromContext(ctx).Warn("failed to clear session cookie", "err", err)
		}
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
