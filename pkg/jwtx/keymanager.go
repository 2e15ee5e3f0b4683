package jwtx

import (
	"errors"
	"fmt"
	"time"
)

// KeyManager wires a signer, the KeySet it publishes into, and a Verifier
// pinned to the signer's algorithm.
type KeyManager struct {
	Signer   Signer
	KeySet   *KeySet
	Verifier *Verifier
}

// KeyManagerOptions configures NewKeyManager.
type KeyManagerOptions struct {
	// Algorithm is one of HS256, EdDSA, ES256, RS256.
	Algorithm string

	// KeyID for the "kid" header. Optional; asymmetric keys default to a
	// thumbprint of the public key.
	KeyID string

	// Key is the HS256 secret or a PEM encoded private key.
	Key []byte

	// Issuer is stamped on and required of every token.
	Issuer string

	Leeway      time.Duration
	Revocations RevocationList
}

// NewKeyManager loads the configured key and returns everything needed to
// issue and verify tokens.
func NewKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, errors.New("jwtx: Issuer is required")
	}
	if len(opts.Key) == 0 {
		return nil, errors.New("jwtx: signing key is required")
	}

	signer, err := NewSigner(opts.Algorithm, opts.KeyID, opts.Key)
	if err != nil {
		return nil, err
	}

	keyset := NewKeySet()
	if err := keyset.AddSigner(signer); err != nil {
		return nil, fmt.Errorf("jwtx: add signer to keyset: %w", err)
	}

	verifier, err := NewVerifier(VerifyOptions{
		Algorithm:   signer.Alg(),
		Keys:        keyset,
		Issuer:      opts.Issuer,
		Leeway:      opts.Leeway,
		Revocations: opts.Revocations,
	})
	if err != nil {
		return nil, err
	}

	return &KeyManager{Signer: signer, KeySet: keyset, Verifier: verifier}, nil
}

// Algorithm returns the signing algorithm being used.
func (km *KeyManager) Algorithm() string {
	return km.Signer.Alg()
}

// IsReady returns true if the KeyManager has valid keys loaded.
func (km *KeyManager) IsReady() bool {
	return km.KeySet.IsReady() && km.Signer.Validate() == nil
}
