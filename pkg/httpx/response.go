package httpx

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

// WriteErrorJSON writes {"error": code, "error_description": desc}.
func WriteErrorJSON(w http.ResponseWriter, status int, code, desc string) {
	WriteJSON(w, status, ErrorBody{Code: code, Description: desc})
}

// WriteBearerError writes an RFC 6750 401 with a WWW-Authenticate challenge.
func WriteBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteErrorJSON(w, http.StatusUnauthorized, "invalid_token", desc)
}
