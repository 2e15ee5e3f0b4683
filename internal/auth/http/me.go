package http

import (
	"net/http"

	"github.com/vvcoe/sembuddy/internal/auth/service"
	"github.com/vvcoe/sembuddy/pkg/authsdk"
	"github.com/vvcoe/sembuddy/pkg/httpx"
)

// MeHandler serves GET and PATCH /v1/auth/me.
type MeHandler struct {
	UserService *service.UserService
}

// HandleGet godoc
//
//	@Summary		Current user
//	@Description	Returns the profile of the token's subject.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UserResponse	"identifier, display_name, role"
//	@Failure		401	{object}	authsdk.ErrorResponse	"invalid_token"
//	@Failure		404	{object}	authsdk.ErrorResponse	"User no longer exists"
//	@Router			/v1/auth/me [get].
func (h *MeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	user, err := h.UserService.Me(r.Context(), claims.Subject)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse(user))
}

// HandlePatch godoc
//
//	@Summary		Update profile
//	@Description	Changes the display name of the token's subject.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.UpdateProfileRequest	true	"New display name"
//	@Success		200		{object}	authsdk.UserResponse			"Updated profile"
//	@Failure		400		{object}	authsdk.ErrorResponse			"invalid_request"
//	@Failure		401		{object}	authsdk.ErrorResponse			"invalid_token"
//	@Router			/v1/auth/me [patch].
func (h *MeHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req authsdk.UpdateProfileRequest
	if err := decodeBody(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	user, err := h.UserService.UpdateDisplayName(r.Context(), claims.Subject, req.DisplayName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse(user))
}
