package cryptox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPepperMissing is returned by LoadPepper when the pepper file does not
// exist and generation is not allowed.
var ErrPepperMissing = errors.New("cryptox: pepper file missing")

// LoadPepper reads the pepper from path. When the file does not exist and
// generate is true a fresh random pepper is written there (0600) and
// returned; otherwise ErrPepperMissing is returned. An empty path disables
// peppering.
func LoadPepper(path string, generate bool) (pepper string, created bool, err error) {
	if path == "" {
		return "", false, nil
	}
	path = filepath.Clean(path)

	data, err := os.ReadFile(path)
	if err == nil {
		return strings.TrimSpace(string(data)), false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", false, fmt.Errorf("cryptox: read pepper: %w", err)
	}
	if !generate {
		return "", false, fmt.Errorf("%w: %s", ErrPepperMissing, path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", false, fmt.Errorf("cryptox: create pepper dir: %w", err)
	}
	pepper, err = GenerateToken(TokenSize256)
	if err != nil {
		return "", false, err
	}
	if err := os.WriteFile(path, []byte(pepper), 0o600); err != nil {
		return "", false, fmt.Errorf("cryptox: write pepper: %w", err)
	}
	return pepper, true, nil
}
