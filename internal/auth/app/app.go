package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	httpapi "github.com/vvcoe/sembuddy/internal/auth/http"
	"github.com/vvcoe/sembuddy/internal/auth/service"
	"github.com/vvcoe/sembuddy/internal/auth/store"
	"github.com/vvcoe/sembuddy/internal/auth/store/drivers/postgres"
	redisstore "github.com/vvcoe/sembuddy/internal/auth/store/drivers/redis"
	"github.com/vvcoe/sembuddy/internal/auth/store/drivers/sqlite"
	"github.com/vvcoe/sembuddy/pkg/cryptox"
	"github.com/vvcoe/sembuddy/pkg/httpx"
	"github.com/vvcoe/sembuddy/pkg/jwtx"
	"github.com/vvcoe/sembuddy/pkg/slogx"
)

// BuildVersion is overridden at build time with -ldflags "-X ...".
var BuildVersion = "v0.1.0"

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	db              store.Store
	revocationCache *redisstore.Revocations // nil unless AUTH_REVOCATION_BACKEND=redis
	keyManager      *jwtx.KeyManager

	authService         *service.AuthService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "sembuddy-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	ctx := context.Background()

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := app.initRevocations(ctx); err != nil {
		app.closeStores()
		return nil, err
	}
	if err := app.initKeys(); err != nil {
		app.closeStores()
		return nil, fmt.Errorf("failed to initialize signing keys: %w", err)
	}
	if err := app.initServices(); err != nil {
		app.closeStores()
		return nil, err
	}
	if err := app.initHTTP(); err != nil {
		app.closeStores()
		return nil, err
	}

	return app, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run serves until SIGINT/SIGTERM or until the server fails, then shuts down.
func (app *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return app.housekeepingService.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			app.logger.Info("shutdown signal received")
		}
		return app.Shutdown()
	})

	return g.Wait()
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) closeStores() error {
	var errs []error
	if app.revocationCache != nil {
		if err := app.revocationCache.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
			errs = append(errs, err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// initDatabase opens the configured store and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL, postgres.PoolConfig{
			MaxConns:        int32(app.cfg.DatabaseMaxConns),
			MaxConnIdleTime: app.cfg.DatabaseIdleTime,
		})
	default:
		db, err = sqlite.NewStore(app.cfg.DatabaseFile)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		app.db = nil
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initRevocations moves the revocation set to Redis when configured.
func (app *Application) initRevocations(ctx context.Context) error {
	if app.cfg.RevocationBackend != RevocationsRedis {
		return nil
	}

	r, err := redisstore.New(ctx, redisstore.Options{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	app.revocationCache = r
	app.db = store.WithRevocations(app.db, r)
	app.logger.Info("revocations stored in redis", "addr", app.cfg.RedisAddr)
	return nil
}

func (app *Application) initKeys() error {
	key, err := LoadSigningKey(app.cfg, app.logger)
	if err != nil {
		return err
	}

	km, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{
		Algorithm:   app.cfg.Algorithm,
		KeyID:       app.cfg.KeyID,
		Key:         key,
		Issuer:      app.cfg.Issuer,
		Leeway:      app.cfg.Leeway,
		Revocations: app.db.Revocations(),
	})
	if err != nil {
		return err
	}

	app.keyManager = km
	app.logger.Info("signing key loaded",
		"algorithm", km.Algorithm(),
		"kid", km.Signer.KID(),
		"issuer", app.cfg.Issuer,
	)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	pepper, created, err := cryptox.LoadPepper(app.cfg.PepperFile, !app.cfg.IsProd())
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}
	if created {
		app.logger.Warn("generated a new password pepper; losing it invalidates every password",
			"path", app.cfg.PepperFile)
	}

	hasher, err := cryptox.NewHasher(cryptox.HasherOptions{
		Algorithm:  app.cfg.PasswordHasher,
		BcryptCost: app.cfg.BcryptCost,
		Pepper:     pepper,
	})
	if err != nil {
		return err
	}

	app.authService = &service.AuthService{
		Store:  app.db,
		Hasher: hasher,
		Tokens: &service.TokenService{
			KeyManager: app.keyManager,
			Issuer:     app.cfg.Issuer,
			AccessTTL:  app.cfg.AccessTTL,
			RefreshTTL: app.cfg.RefreshTTL,
		},
		RotateRefreshTokens:    app.cfg.RotateRefreshTokens,
		BlacklistAfterRotation: app.cfg.BlacklistAfterRotation,
		BootstrapToken:         app.cfg.BootstrapToken,
	}
	app.userService = &service.UserService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	if app.cfg.BootstrapToken == "" {
		if empty, err := app.db.Users().IsEmpty(context.Background()); err == nil && empty {
			app.logger.Warn("no users and no BOOTSTRAP_TOKEN set; no admin can be registered")
		}
	}
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() error {
	router := httpapi.NewRouter(app.keyManager, BuildVersion, app.db, app.logger)
	router.AuthService = app.authService
	router.UserService = app.userService
	if app.revocationCache != nil {
		router.RevocationCache = app.revocationCache
	}

	if app.cfg.CookieSessions {
		key, err := LoadSessionKey(app.cfg, app.logger)
		if err != nil {
			return err
		}
		sessions, err := httpx.NewSessionStore(key, app.cfg.IsProd())
		if err != nil {
			return err
		}
		router.Sessions = sessions
		app.logger.Info("cookie sessions enabled")
	}

	proxies, err := httpx.ParseTrustedProxies(app.cfg.TrustedProxies)
	if err != nil {
		return err
	}
	httpx.SetTrustedProxies(proxies)
	if len(proxies) > 0 {
		app.logger.Info("forwarding headers trusted", "proxies", len(proxies))
	}

	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              ":" + strconv.Itoa(app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return nil
}
