package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Identifier and password limits.
const (
	MaxIdentifierLength  = 150
	MaxDisplayNameLength = 150
	MaxPasswordLength    = 1024
)

var (
	ErrInvalidIdentifier  = errors.New("domain: invalid identifier")
	ErrInvalidPassword    = errors.New("domain: invalid password")
	ErrInvalidDisplayName = errors.New("domain: invalid display name")
)

type User struct {
	ID           string // ULID
	Identifier   string // unique, normalised with NormalizeIdentifier
	DisplayName  string
	PasswordHash string // self-describing, see cryptox.Hasher
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeIdentifier trims and lower-cases an identifier so "Alice" and
// "alice" name the same account.
func NormalizeIdentifier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidateIdentifier accepts 1-150 letters, digits and @ . + - _ once
// normalised.
func ValidateIdentifier(id string) error {
	if id == "" || len(id) > MaxIdentifierLength {
		return fmt.Errorf("%w: must be 1-%d characters", ErrInvalidIdentifier, MaxIdentifierLength)
	}
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("@.+-_", r) {
			continue
		}
		return fmt.Errorf("%w: character %q not allowed", ErrInvalidIdentifier, r)
	}
	return nil
}

// ValidatePassword only bounds length; strength rules are out of scope.
func ValidatePassword(pw string) error {
	if pw == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidPassword)
	}
	if len(pw) > MaxPasswordLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidPassword, MaxPasswordLength)
	}
	return nil
}

// ValidateDisplayName bounds length and rejects control characters.
func ValidateDisplayName(name string) error {
	if len(name) > MaxDisplayNameLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidDisplayName, MaxDisplayNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control characters not allowed", ErrInvalidDisplayName)
		}
	}
	return nil
}
