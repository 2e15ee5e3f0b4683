package http

import (
	"context"
	"net/http"
	"time"

	"github.com/vvcoe/sembuddy/pkg/authsdk"
	"github.com/vvcoe/sembuddy/pkg/httpx"
	"github.com/vvcoe/sembuddy/pkg/slogx"
)

// Pinger is a dependency the readiness check pings.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SignerChecker reports whether a signing key is loaded.
type SignerChecker interface {
	IsReady() bool
}

const readyzTimeout = 2 * time.Second

// ReadyzHandler godoc
//
//	@Summary		Readiness check
//	@Description	Checks the database, the signing key and, when configured, the revocation cache.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"One or more checks failed"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	db Pinger,
	signer SignerChecker,
	revocations Pinger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyzTimeout)
		defer cancel()
		log := slogx.FromContext(ctx)

		checks := &authsdk.HealthChecks{Database: "ok", Signer: "ok"}
		status, code := "ok", http.StatusOK
		fail := func() { status, code = "unavailable", http.StatusServiceUnavailable }

		if err := db.Ping(ctx); err != nil {
			log.Warn("readiness: database ping failed", "err", err)
			checks.Database = "error"
			fail()
		}
		if !signer.IsReady() {
			log.Warn("readiness: no signing key loaded")
			checks.Signer = "error"
			fail()
		}
		if revocations != nil {
			checks.Revocations = "ok"
			if err := revocations.Ping(ctx); err != nil {
				log.Warn("readiness: revocation cache ping failed", "err", err)
				checks.Revocations = "error"
				fail()
			}
		}

		httpx.WriteJSON(w, code, authsdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Truncate(time.Second).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
