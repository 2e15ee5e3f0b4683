package authsdk

import (
	"context"
	"net/http"
)

// Me returns the profile of the session's user.
func (s *Session) Me(ctx context.Context) (*UserResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/auth/me", nil)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes the session user's display name.
func (s *Session) UpdateProfile(ctx context.Context, displayName string) (*UserResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPatch, "/v1/auth/me", UpdateProfileRequest{
		DisplayName: displayName,
	})
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}
