package authsdk

import (
	"github.com/vvcoe/sembuddy/pkg/jwtx"
)

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the JSON body of every error response. Client code gets
// an *APIError instead.
type ErrorResponse struct {
	Error            string `json:"error" example:"invalid_credentials"`
	ErrorDescription string `json:"error_description" example:"invalid identifier or password"`
}

// ============================================================================
// Credential Types
// ============================================================================

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Identifier string `json:"identifier" example:"alice"`
	Password   string `json:"password" example:"p@ss"`
}

// RegisterRequest is the body of POST /v1/auth/register. Role defaults to
// "student" when empty.
type RegisterRequest struct {
	Identifier  string `json:"identifier" example:"alice"`
	Password    string `json:"password" example:"p@ss"`
	Role        string `json:"role,omitempty" example:"student" enums:"admin,staff,student"`
	DisplayName string `json:"display_name,omitempty" example:"Alice Liddell"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken string `json:"access_token"`

	// RefreshToken is omitted on refresh when rotation is disabled; keep
	// using the one you have.
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is always "Bearer".
	TokenType string `json:"token_type" example:"Bearer"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int `json:"expires_in" example:"900"`
}

// RefreshRequest is the body of POST /v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest is the optional body of POST /v1/auth/logout.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// ============================================================================
// User Types
// ============================================================================

// UserResponse describes a user. ID is only set on registration.
type UserResponse struct {
	ID          string `json:"id,omitempty" example:"01J9Z3K4M5N6P7Q8R9S0T1V2W3"`
	Identifier  string `json:"identifier" example:"alice"`
	DisplayName string `json:"display_name" example:"Alice Liddell"`
	Role        string `json:"role" example:"student"`
}

// UpdateProfileRequest is the body of PATCH /v1/auth/me.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" example:"Alice L."`
}

// UpdateRoleRequest is the body of PUT /v1/admin/users/{identifier}/role.
type UpdateRoleRequest struct {
	Role string `json:"role" example:"staff" enums:"admin,staff,student"`
}

// ============================================================================
// Admin Types
// ============================================================================

// DashboardResponse is returned by GET /v1/admin/dashboard.
type DashboardResponse struct {
	Message string         `json:"message" example:"Welcome to the admin dashboard"`
	Stats   DashboardStats `json:"stats"`
}

// DashboardStats holds live user counts.
type DashboardStats struct {
	UsersByRole map[string]int64 `json:"users_by_role"`
	TotalUsers  int64            `json:"total_users" example:"42"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz; only /readyz fills Checks.
type HealthResponse struct {
	// Status is "ok" or, on /readyz, "unavailable".
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports each dependency as "ok" or "error".
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`

	// Revocations is only reported when a separate revocation backend
	// (Redis) is configured.
	Revocations string `json:"revocations,omitempty"`
}

// ============================================================================
// JWKS Types
// ============================================================================

// JWKSResponse is the document served at /.well-known/jwks.json. It is
// empty when tokens are signed with a shared secret.
type JWKSResponse jwtx.JWKS
