package authsdk

import (
	"context"
	"net/http"
)

// AdminDashboard fetches the admin overview. Non-admins get ErrAccessDenied.
func (s *Session) AdminDashboard(ctx context.Context) (*DashboardResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/admin/dashboard", nil)
	if err != nil {
		return nil, err
	}

	var dash DashboardResponse
	if err := decodeJSON(resp, &dash, http.StatusOK); err != nil {
		return nil, err
	}
	return &dash, nil
}

// UpdateRole sets another user's role. The user's existing tokens keep the
// old role until they are refreshed.
func (s *Session) UpdateRole(ctx context.Context, identifier, role string) (*UserResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPut, userPath(identifier), UpdateRoleRequest{Role: role})
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// Register creates an account of any role, admins included, on behalf of
// the session's admin user.
func (s *Session) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/auth/register", req)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusCreated); err != nil {
		return nil, err
	}
	return &user, nil
}
