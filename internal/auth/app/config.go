package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vvcoe/sembuddy/pkg/cryptox"
	"github.com/vvcoe/sembuddy/pkg/httpx"
	"github.com/vvcoe/sembuddy/pkg/jwtx"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	RevocationsDatabase = "database"
	RevocationsRedis    = "redis"

	envProd = "prod"
)

type Config struct {
	EnvFile string // AUTH_ENV_FILE: optional dotenv file, also where dev secrets are saved (default: .env)

	Issuer         string        // AUTH_ISSUER (default: sembuddy-auth)
	Algorithm      string        // AUTH_ALGORITHM: HS256, EdDSA, ES256, RS256 (default: HS256)
	SigningSecret  string        // AUTH_SIGNING_SECRET: HS256 secret
	SigningKeyFile string        // AUTH_SIGNING_KEY_FILE: PEM private key for asymmetric algorithms (default: signing_key.pem)
	KeyID          string        // AUTH_KEY_ID: optional "kid"
	RSABits        int           // AUTH_RSA_BITS: size of generated RS256 dev keys (default: 4096)
	AccessTTL      time.Duration // AUTH_ACCESS_TOKEN_TTL (default: 10m)
	RefreshTTL     time.Duration // AUTH_REFRESH_TOKEN_TTL (default: 720h)
	Leeway         time.Duration // AUTH_TOKEN_LEEWAY: clock skew tolerance (default: 0)

	RotateRefreshTokens    bool // AUTH_ROTATE_REFRESH_TOKENS (default: true)
	BlacklistAfterRotation bool // AUTH_BLACKLIST_AFTER_ROTATION (default: true)

	PasswordHasher string // AUTH_PASSWORD_HASHER: argon2id or bcrypt (default: argon2id)
	BcryptCost     int    // AUTH_BCRYPT_COST (default: bcrypt default)
	PepperFile     string // AUTH_PEPPER_FILE: optional pepper, generated in dev if missing

	DatabaseDriver   string        // AUTH_DATABASE_DRIVER: sqlite or postgres (default: sqlite)
	DatabaseFile     string        // AUTH_DATABASE_FILE (default: auth.db)
	DatabaseURL      string        // AUTH_DATABASE_URL: postgres DSN
	DatabaseMaxConns int           // AUTH_DATABASE_MAX_CONNS (default: 10)
	DatabaseIdleTime time.Duration // AUTH_DATABASE_MAX_IDLE_TIME (default: 5m)

	RevocationBackend string // AUTH_REVOCATION_BACKEND: database or redis (default: database)
	RedisAddr         string // REDIS_ADDR
	RedisPassword     string // REDIS_PASSWORD
	RedisDB           int    // REDIS_DB

	CookieSessions bool   // AUTH_COOKIE_SESSIONS (default: false)
	SessionKey     string // AUTH_SESSION_KEY: cookie signing key, at least 32 bytes

	BootstrapToken string // BOOTSTRAP_TOKEN: lets the operator register the first admin

	// TrustedProxies lists the CIDRs or IPs whose X-Forwarded-For and
	// X-Real-IP headers are believed for rate limiting (AUTH_TRUSTED_PROXIES,
	// comma separated, default: none).
	TrustedProxies []string

	Env                  string        // ENV: dev, staging, prod (default: dev)
	LogLevel             string        // LOG_LEVEL (default: info)
	LogFormat            string        // LOG_FORMAT: json or text (default: json)
	Port                 int           // PORT (default: 8080)
	ShutdownGracePeriod  time.Duration // SHUTDOWN_GRACE_PERIOD (default: 10s)
	HousekeepingInterval time.Duration // HOUSEKEEPING_INTERVAL (default: 1h)
}

// LoadConfig reads the environment, after loading the optional dotenv file
// named by AUTH_ENV_FILE. Variables already set win over the file.
func LoadConfig() (Config, error) {
	envFile := getEnvOrDefault("AUTH_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := Config{
		EnvFile: envFile,

		Issuer:         getEnvOrDefault("AUTH_ISSUER", "sembuddy-auth"),
		Algorithm:      getEnvOrDefault("AUTH_ALGORITHM", jwtx.AlgorithmHS256),
		SigningSecret:  os.Getenv("AUTH_SIGNING_SECRET"),
		SigningKeyFile: getEnvOrDefault("AUTH_SIGNING_KEY_FILE", "signing_key.pem"),
		KeyID:          os.Getenv("AUTH_KEY_ID"),
		RSABits:        getEnvIntOrDefault("AUTH_RSA_BITS", 4096),
		AccessTTL:      getEnvDurationOrDefault("AUTH_ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:     getEnvDurationOrDefault("AUTH_REFRESH_TOKEN_TTL", jwtx.DefaultRefreshTokenTTL),
		Leeway:         getEnvDurationOrDefault("AUTH_TOKEN_LEEWAY", 0),

		RotateRefreshTokens:    getEnvBoolOrDefault("AUTH_ROTATE_REFRESH_TOKENS", true),
		BlacklistAfterRotation: getEnvBoolOrDefault("AUTH_BLACKLIST_AFTER_ROTATION", true),

		PasswordHasher: getEnvOrDefault("AUTH_PASSWORD_HASHER", cryptox.AlgorithmArgon2id),
		BcryptCost:     getEnvIntOrDefault("AUTH_BCRYPT_COST", 0),
		PepperFile:     os.Getenv("AUTH_PEPPER_FILE"),

		DatabaseDriver:   getEnvOrDefault("AUTH_DATABASE_DRIVER", DriverSQLite),
		DatabaseFile:     getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		DatabaseURL:      os.Getenv("AUTH_DATABASE_URL"),
		DatabaseMaxConns: getEnvIntOrDefault("AUTH_DATABASE_MAX_CONNS", 10),
		DatabaseIdleTime: getEnvDurationOrDefault("AUTH_DATABASE_MAX_IDLE_TIME", 5*time.Minute),

		RevocationBackend: getEnvOrDefault("AUTH_REVOCATION_BACKEND", RevocationsDatabase),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getEnvIntOrDefault("REDIS_DB", 0),

		CookieSessions: getEnvBoolOrDefault("AUTH_COOKIE_SESSIONS", false),
		SessionKey:     os.Getenv("AUTH_SESSION_KEY"),

		BootstrapToken: os.Getenv("BOOTSTRAP_TOKEN"),
		TrustedProxies: strings.Split(os.Getenv("AUTH_TRUSTED_PROXIES"), ","),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg, cfg.Validate()
}

// IsProd reports whether the service runs in production, where missing
// secrets are fatal instead of generated.
func (c Config) IsProd() bool {
	return strings.EqualFold(c.Env, envProd) || strings.EqualFold(c.Env, "production")
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	var errs []error

	switch c.Algorithm {
	case jwtx.AlgorithmHS256, jwtx.AlgorithmEdDSA, jwtx.AlgorithmES256, jwtx.AlgorithmRS256:
	default:
		errs = append(errs, fmt.Errorf("AUTH_ALGORITHM: unsupported algorithm %q", c.Algorithm))
	}

	switch c.PasswordHasher {
	case cryptox.AlgorithmArgon2id, cryptox.AlgorithmBcrypt:
	default:
		errs = append(errs, fmt.Errorf("AUTH_PASSWORD_HASHER: unsupported hasher %q", c.PasswordHasher))
	}

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_FILE is required for sqlite"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_URL is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("AUTH_DATABASE_DRIVER: unsupported driver %q", c.DatabaseDriver))
	}

	switch c.RevocationBackend {
	case RevocationsDatabase:
	case RevocationsRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis revocation backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("AUTH_REVOCATION_BACKEND: unsupported backend %q", c.RevocationBackend))
	}

	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	if c.Leeway < 0 {
		errs = append(errs, errors.New("AUTH_TOKEN_LEEWAY must not be negative"))
	}

	if _, err := httpx.ParseTrustedProxies(c.TrustedProxies); err != nil {
		errs = append(errs, fmt.Errorf("AUTH_TRUSTED_PROXIES: %w", err))
	}

	if c.IsProd() {
		if c.Algorithm == jwtx.AlgorithmHS256 && c.SigningSecret == "" {
			errs = append(errs, errors.New("AUTH_SIGNING_SECRET is required in production"))
		}
		if c.CookieSessions && c.SessionKey == "" {
			errs = append(errs, errors.New("AUTH_SESSION_KEY is required in production when cookie sessions are on"))
		}
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
