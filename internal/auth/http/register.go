package http

import (
	"net/http"
	"time"

	"github.com/vvcoe/sembuddy/internal/auth/domain"
	"github.com/vvcoe/sembuddy/internal/auth/service"
	"github.com/vvcoe/sembuddy/pkg/authsdk"
	"github.com/vvcoe/sembuddy/pkg/httpx"
	"github.com/vvcoe/sembuddy/pkg/jwtx"
	"github.com/vvcoe/sembuddy/pkg/slogx"
)

// RegisterHandler serves POST /v1/auth/register.
type RegisterHandler struct {
	AuthService *service.AuthService

	// Verifier checks an optional bearer token; an admin caller may
	// register other admins.
	Verifier httpx.TokenVerifier

	// Now defaults to time.Now.
	Now func() time.Time
}

// ServeHTTP godoc
//
//	@Summary		Register
//	@Description	Creates a user. Students and staff may register themselves.
//	@Description	Registering an admin requires an admin bearer token or the X-Bootstrap-Token header.
//	@Tags			Auth
//	@Accept			json
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			body				body		authsdk.RegisterRequest	true	"New user"
//	@Param			X-Bootstrap-Token	header		string					false	"Operator bootstrap token"
//	@Success		201					{object}	authsdk.UserResponse	"id, identifier, display_name, role"
//	@Failure		400					{object}	authsdk.ErrorResponse	"invalid_request or duplicate_identifier"
//	@Failure		401					{object}	authsdk.ErrorResponse	"Bearer token presented but invalid"
//	@Failure		403					{object}	authsdk.ErrorResponse	"Admin registration not permitted"
//	@Failure		429					{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Router			/v1/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.RegisterRequest
	if err := decodeBody(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	in := service.RegisterRequest{
		Identifier:     req.Identifier,
		Password:       req.Password,
		DisplayName:    req.DisplayName,
		Role:           req.Role,
		BootstrapToken: r.Header.Get(authsdk.BootstrapTokenHeader),
	}

	if raw, ok := httpx.BearerToken(r); ok {
		now := time.Now
		if h.Now != nil {
			now = h.Now
		}
		claims, err := h.Verifier.VerifyType(ctx, raw, jwtx.TokenTypeAccess, now())
		if err != nil {
			if !jwtx.IsRejection(err) {
				writeServiceError(w, r, err)
				return
			}
			log.Info("register: bearer token rejected", "err", err)
			authsdk.ErrInvalidToken.WriteError(w)
			return
		}
		in.Caller = &claims
	}

	user, err := h.AuthService.Register(ctx, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := userResponse(user)
	resp.ID = user.ID
	httpx.WriteJSON(w, http.StatusCreated, resp)
}

func userResponse(u domain.User) authsdk.UserResponse {
	return authsdk.UserResponse{
		Identifier:  u.Identifier,
		DisplayName: u.DisplayName,
		Role:        u.Role.String(),
	}
}
