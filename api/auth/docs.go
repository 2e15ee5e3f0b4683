// Package auth holds the OpenAPI document served at /swagger/. Regenerate
// it from the handler annotations with:
//
//	swag init -g internal/auth/http/router.go -o api/auth --outputTypes go
package auth

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {"name": "MIT", "url": "https://opensource.org/licenses/MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/authsdk.LoginRequest"}}],
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/authsdk.TokenResponse"}},
                    "400": {"description": "Malformed body", "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}},
                    "401": {"description": "invalid_credentials", "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}},
                    "429": {"description": "rate_limit_exceeded", "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}}
                }
            }
        },
        "/v1/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/authsdk.RegisterRequest"}},
                    {"name": "X-Bootstrap-Token", "in": "header", "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/authsdk.UserResponse"}},
                    "400": {"description": "invalid_request or duplicate_identifier", "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}},
                    "401": {"description": "Bearer token presented but invalid", "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}},
                    "403": {"description": "Admin registration not permitted", "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}}
                }
            }
        },
        "/v1/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Refresh tokens",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/authsdk.RefreshRequest"}}],
                "responses": {
                    "200": {"description": "New tokens", "schema": {"$ref": "#/definitions/authsdk.TokenResponse"}},
                    "401": {"description": "invalid_token", "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}}
                }
            }
        },
        "/v1/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Auth"],
                "summary": "Log out",
                "parameters": [{"name": "body", "in": "body", "schema": {"$ref": "#/definitions/authsdk.LogoutRequest"}}],
                "responses": {
                    "204": {"description": "Logged out"},
                    "401": {"description": "invalid_token", "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}}
                }
            }
        },
        "/v1/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Users"],
                "summary": "Current user",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Profile", "schema": {"$ref": "#/definitions/authsdk.UserResponse"}},
                    "401": {"description": "invalid_token", "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["Users"],
                "summary": "Update profile",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/authsdk.UpdateProfileRequest"}}],
                "responses": {
                    "200": {"description": "Updated profile", "schema": {"$ref": "#/definitions/authsdk.UserResponse"}},
                    "400": {"description": "invalid_request", "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}}
                }
            }
        },
        "/v1/admin/dashboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Admin"],
                "summary": "Admin dashboard",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "message, stats", "schema": {"$ref": "#/definitions/authsdk.DashboardResponse"}},
                    "401": {"description": "invalid_token", "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}},
                    "403": {"description": "access_denied", "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}}
                }
            }
        },
        "/v1/admin/users/{identifier}/role": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["Admin"],
                "summary": "Change a user's role",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "identifier", "in": "path", "required": true, "type": "string"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/authsdk.UpdateRoleRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated user", "schema": {"$ref": "#/definitions/authsdk.UserResponse"}},
                    "403": {"description": "access_denied", "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}},
                    "404": {"description": "not_found", "schema": {"$ref": "#/definitions/authsdk.ErrorResponse"}}
                }
            }
        },
        "/.well-known/jwks.json": {
            "get": {
                "tags": ["well-known"],
                "summary": "Get JWKS",
                "produces": ["application/json"],
                "responses": {"200": {"description": "The JSON Web Key Set", "schema": {"$ref": "#/definitions/authsdk.JWKSResponse"}}}
            }
        },
        "/livez": {
            "get": {
                "tags": ["Health"],
                "summary": "Liveness check",
                "produces": ["application/json"],
                "responses": {"200": {"description": "status, uptime, version", "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}}}
            }
        },
        "/readyz": {
            "get": {
                "tags": ["Health"],
                "summary": "Readiness check",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Ready", "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}},
                    "503": {"description": "One or more checks failed", "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "authsdk.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string", "example": "invalid_credentials"}, "error_description": {"type": "string"}}},
        "authsdk.LoginRequest": {"type": "object", "properties": {"identifier": {"type": "string", "example": "alice"}, "password": {"type": "string", "example": "p@ss"}}},
        "authsdk.RegisterRequest": {"type": "object", "properties": {"identifier": {"type": "string", "example": "alice"}, "password": {"type": "string"}, "role": {"type": "string", "enum": ["admin", "staff", "student"]}, "display_name": {"type": "string"}}},
        "authsdk.TokenResponse": {"type": "object", "properties": {"access_token": {"type": "string"}, "refresh_token": {"type": "string"}, "token_type": {"type": "string", "example": "Bearer"}, "expires_in": {"type": "integer", "example": 900}}},
        "authsdk.RefreshRequest": {"type": "object", "properties": {"refresh_token": {"type": "string"}}},
        "authsdk.LogoutRequest": {"type": "object", "properties": {"refresh_token": {"type": "string"}}},
        "authsdk.UserResponse": {"type": "object", "properties": {"id": {"type": "string"}, "identifier": {"type": "string"}, "display_name": {"type": "string"}, "role": {"type": "string"}}},
        "authsdk.UpdateProfileRequest": {"type": "object", "properties": {"display_name": {"type": "string"}}},
        "authsdk.UpdateRoleRequest": {"type": "object", "properties": {"role": {"type": "string", "enum": ["admin", "staff", "student"]}}},
        "authsdk.DashboardResponse": {"type": "object", "properties": {"message": {"type": "string"}, "stats": {"$ref": "#/definitions/authsdk.DashboardStats"}}},
        "authsdk.DashboardStats": {"type": "object", "properties": {"users_by_role": {"type": "object", "additionalProperties": {"type": "integer"}}, "total_users": {"type": "integer"}}},
        "authsdk.HealthResponse": {"type": "object", "properties": {"status": {"type": "string"}, "uptime": {"type": "string"}, "version": {"type": "string"}, "checks": {"$ref": "#/definitions/authsdk.HealthChecks"}}},
        "authsdk.HealthChecks": {"type": "object", "properties": {"database": {"type": "string"}, "signer": {"type": "string"}, "revocations": {"type": "string"}}},
        "authsdk.JWKSResponse": {"type": "object", "properties": {"keys": {"type": "array", "items": {"type": "object"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"description": "JWT access token. Format: \"Bearer {token}\".", "type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "SemBuddy Authentication Service API",
	Description:      "Password login issuing signed, time-bound JWT access and refresh tokens, with role-gated admin views.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
