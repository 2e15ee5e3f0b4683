package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vvcoe/sembuddy/internal/auth/domain"
	"github.com/vvcoe/sembuddy/internal/auth/service"
	"github.com/vvcoe/sembuddy/internal/auth/store"
	"github.com/vvcoe/sembuddy/pkg/httpx"
	"github.com/vvcoe/sembuddy/pkg/jwtx"
	"github.com/vvcoe/sembuddy/pkg/slogx"

	_ "github.com/vvcoe/sembuddy/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeyManager
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService *service.AuthService
	UserService *service.UserService

	// Sessions enables cookie sessions when set.
	Sessions *httpx.SessionStore

	// RevocationCache is pinged by /readyz when revocations live outside
	// the database.
	RevocationCache Pinger
}

func NewRouter(
	keys *jwtx.KeyManager,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			SemBuddy Authentication Service API
//	@version		0.1.0
//	@description	Password login issuing signed, time-bound JWT access and refresh tokens, with role-gated admin views.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) authn() httpx.Middleware {
	return httpx.AuthnMiddleware(httpx.AuthnOptions{
		Verifier: r.keys.Verifier,
		Sessions: r.Sessions,
		Now:      r.AuthService.Clock,
	})
}

func (r *Router) registerAuth() {
	// Credential endpoints are limited per IP and identifier so one client
	// guessing one account is throttled without locking out a shared NAT.
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(&LoginHandler{AuthService: r.AuthService, Sessions: r.Sessions},
			httpx.RateLimitByIPAndField(httpx.StrictLimit, "identifier"),
		),
	)
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(&RegisterHandler{
			AuthService: r.AuthService,
			Verifier:    r.keys.Verifier,
			Now:         r.AuthService.Clock,
		},
			httpx.RateLimitByIPAndField(httpx.StrictLimit, "identifier"),
		),
	)
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(&RefreshHandler{AuthService: r.AuthService, Sessions: r.Sessions},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(&LogoutHandler{AuthService: r.AuthService, Sessions: r.Sessions},
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &MeHandler{UserService: r.UserService}

	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.authn(),
			httpx.RateLimitByUser(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("PATCH /v1/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandlePatch),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{UserService: r.UserService}

	adminOnly := httpx.Authorize(func(c jwtx.Claims) bool {
		return service.Authorize(c, domain.RoleAdmin).IsAllowed()
	})

	r.Mux.Handle("GET /v1/admin/dashboard",
		httpx.Chain(http.HandlerFunc(h.HandleDashboard),
			r.authn(),
			adminOnly,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /v1/admin/users/{identifier}/role",
		httpx.Chain(http.HandlerFunc(h.HandleUpdateRole),
			r.authn(),
			adminOnly,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys.KeySet),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys, r.RevocationCache),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
