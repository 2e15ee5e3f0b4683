package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/vvcoe/sembuddy/pkg/cryptox"
	"github.com/vvcoe/sembuddy/pkg/jwtx"
)

// ErrMissingSigningKey is returned in production when no signing key is
// configured. The service never makes one up outside development.
var ErrMissingSigningKey = errors.New("signing key not configured")

// LoadSigningKey returns the HS256 secret or the PEM private key for
// cfg.Algorithm. Outside production a missing key is generated and saved
// so that tokens survive restarts: secrets go to the dotenv file, private
// keys to SigningKeyFile.
func LoadSigningKey(cfg Config, logger *slog.Logger) ([]byte, error) {
	if cfg.Algorithm == jwtx.AlgorithmHS256 {
		if cfg.SigningSecret != "" {
			return []byte(cfg.SigningSecret), nil
		}
		if cfg.IsProd() {
			return nil, fmt.Errorf("%w: set AUTH_SIGNING_SECRET", ErrMissingSigningKey)
		}

		secret, err := cryptox.GenerateHexSecret(cryptox.TokenSize256)
		if err != nil {
			return nil, err
		}
		if err := persistDevSecret(cfg.EnvFile, "AUTH_SIGNING_SECRET", secret); err != nil {
			return nil, err
		}
		logger.Warn("generated a development signing secret; set AUTH_SIGNING_SECRET before deploying",
			"saved_to", cfg.EnvFile)
		return []byte(secret), nil
	}

	pemKey, err := os.ReadFile(cfg.SigningKeyFile)
	if err == nil {
		return pemKey, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read signing key: %w", err)
	}
	if cfg.IsProd() {
		return nil, fmt.Errorf("%w: %s does not exist", ErrMissingSigningKey, cfg.SigningKeyFile)
	}

	pemKey, err = cryptox.GenerateSigningKey(cfg.Algorithm, cfg.RSABits)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(cfg.SigningKeyFile); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create key dir: %w", err)
		}
	}
	if err := os.WriteFile(cfg.SigningKeyFile, pemKey, 0o600); err != nil {
		return nil, fmt.Errorf("write signing key: %w", err)
	}
	logger.Warn("generated a development signing key; provision a real key before deploying",
		"algorithm", cfg.Algorithm, "saved_to", cfg.SigningKeyFile)
	return pemKey, nil
}

// LoadSessionKey returns the cookie signing key, generating one outside
// production in the same way as LoadSigningKey.
func LoadSessionKey(cfg Config, logger *slog.Logger) ([]byte, error) {
	if cfg.SessionKey != "" {
		return []byte(cfg.SessionKey), nil
	}
	if cfg.IsProd() {
		return nil, errors.New("AUTH_SESSION_KEY not configured")
	}

	key, err := cryptox.GenerateHexSecret(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}
	if err := persistDevSecret(cfg.EnvFile, "AUTH_SESSION_KEY", key); err != nil {
		return nil, err
	}
	logger.Warn("generated a development session key", "saved_to", cfg.EnvFile)
	return []byte(key), nil
}

// persistDevSecret sets key in the dotenv file at path, keeping whatever
// else it holds, and in the process environment.
func persistDevSecret(path, key, value string) error {
	vars, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read %s: %w", path, err)
		}
		vars = map[string]string{}
	}
	vars[key] = value

	if err := godotenv.Write(vars, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return os.Setenv(key, value)
}
