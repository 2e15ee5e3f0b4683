package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/vvcoe/sembuddy/internal/auth/service"
	"github.com/vvcoe/sembuddy/pkg/authsdk"
	"github.com/vvcoe/sembuddy/pkg/slogx"
)

const maxBodyBytes = 64 << 10

var (
	errEmptyBody          = errors.New("empty request body")
	errUnsupportedContent = errors.New("unsupported content type")
)

// decodeBody reads a JSON body into dst. Form bodies are accepted too and
// mapped onto dst's json field names.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		var err error
		if mediaType, _, err = mime.ParseMediaType(ct); err != nil {
			return errUnsupportedContent
		}
	}

	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return err
		}
		fields := make(map[string]string, len(r.PostForm))
		for k := range r.PostForm {
			fields[k] = r.PostForm.Get(k)
		}
		b, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, dst)

	case "application/json":
		err := json.NewDecoder(r.Body).Decode(dst)
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err

	default:
		return errUnsupportedContent
	}
}

// writeServiceError maps a service error onto its API error. Anything it
// does not recognise is logged and reported as a server error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		authsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrInvalidRefresh):
		authsdk.ErrInvalidToken.WriteError(w)
	case errors.Is(err, service.ErrDuplicateIdentifier):
		authsdk.ErrDuplicateIdentifier.WriteError(w)
	case errors.Is(err, service.ErrInvalidRole):
		authsdk.ErrInvalidRole.WriteError(w)
	case errors.Is(err, service.ErrAdminRegistration):
		authsdk.NewAPIError(http.StatusForbidden, authsdk.ErrorCodeAccessDenied,
			"registering an admin requires an admin token or the bootstrap token").WriteError(w)
	case errors.Is(err, service.ErrInvalidRequest):
		authsdk.ErrInvalidRequest.WriteError(w)
	case errors.Is(err, service.ErrUserNotFound):
		authsdk.ErrUserNotFound.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}
