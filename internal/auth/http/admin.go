package http

import (
	"net/http"

	"github.com/vvcoe/sembuddy/internal/auth/service"
	"github.com/vvcoe/sembuddy/pkg/authsdk"
	"github.com/vvcoe/sembuddy/pkg/httpx"
)

// AdminHandler serves the admin-only routes. The router puts it behind
// the admin authorization gate.
type AdminHandler struct {
	UserService *service.UserService
}

// HandleDashboard godoc
//
//	@Summary		Admin dashboard
//	@Description	Returns a welcome message and live user counts by role. Admins only.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.DashboardResponse	"message, stats"
//	@Failure		401	{object}	authsdk.ErrorResponse		"invalid_token"
//	@Failure		403	{object}	authsdk.ErrorResponse		"access_denied"
//	@Router			/v1/admin/dashboard [get].
func (h *AdminHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.UserService.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	byRole := make(map[string]int64, len(dash.Counts))
	for role, n := range dash.Counts {
		byRole[role.String()] = n
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.DashboardResponse{
		Message: dash.Message,
		Stats: authsdk.DashboardStats{
			UsersByRole: byRole,
			TotalUsers:  dash.Total,
		},
	})
}

// HandleUpdateRole godoc
//
//	@Summary		Change a user's role
//	@Description	Sets the role of the named user. Their current tokens keep the old role until refreshed. Admins only.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			identifier	path		string						true	"User identifier"
//	@Param			body		body		authsdk.UpdateRoleRequest	true	"New role"
//	@Success		200			{object}	authsdk.UserResponse		"Updated user"
//	@Failure		400			{object}	authsdk.ErrorResponse		"invalid_request"
//	@Failure		401			{object}	authsdk.ErrorResponse		"invalid_token"
//	@Failure		403			{object}	authsdk.ErrorResponse		"access_denied"
//	@Failure		404			{object}	authsdk.ErrorResponse		"not_found"
//	@Router			/v1/admin/users/{identifier}/role [put].
func (h *AdminHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	var req authsdk.UpdateRoleRequest
	if err := decodeBody(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	user, err := h.UserService.UpdateRole(r.Context(), r.PathValue("identifier"), req.Role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userResponse(user))
}
