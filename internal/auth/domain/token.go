package domain

import "time"

// TokenPair is what login and refresh hand back to the caller.
type TokenPair struct {
	AccessToken  string
	RefreshToken string // empty on refresh when rotation is off
	ExpiresIn    time.Duration
	AccessJTI    string
}

// Revocation marks a token id as invalid before its natural expiry. It can
// be purged once ExpiresAt has passed since the token is dead anyway.
type Revocation struct {
	JTI       string
	ExpiresAt time.Time
	RevokedAt time.Time
}
