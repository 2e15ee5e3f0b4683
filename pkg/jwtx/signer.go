package jwtx

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Supported JWT signing algorithms.
const (
	AlgorithmHS256 = "HS256"
	AlgorithmEdDSA = "EdDSA"
	AlgorithmES256 = "ES256"
	AlgorithmRS256 = "RS256"
)

// MinHMACSecretLength is the shortest HS256 secret we accept, in bytes.
const MinHMACSecretLength = 32

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)

	// VerificationKey is the key a verifier needs for this signer's
	// tokens: the shared secret for HMAC, the public key otherwise.
	VerificationKey() any

	Validate() error
}

// PublicSigner is implemented by asymmetric signers whose verification key
// can be published.
type PublicSigner interface {
	Signer
	PublicJWK() JWK
}

// IsAsymmetric reports whether alg uses a public/private key pair.
func IsAsymmetric(alg string) bool {
	switch alg {
	case AlgorithmEdDSA, AlgorithmES256, AlgorithmRS256:
		return true
	default:
		return false
	}
}

// NewSigner creates a signer for alg. For HS256 key is the raw shared
// secret; for the asymmetric algorithms it is a PEM encoded private key.
func NewSigner(alg, kid string, key []byte) (Signer, error) {
	switch alg {
	case AlgorithmHS256:
		return NewSignerHS256(kid, key)
	case AlgorithmEdDSA, AlgorithmES256, AlgorithmRS256:
		return newAsymmetricSigner(alg, kid, key)
	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q", alg)
	}
}

// HMACSigner signs with HS256 and a shared secret. The secret doubles as
// the verification key so it is never published.
type HMACSigner struct {
	kid    string
	secret []byte
}

// NewSignerHS256 creates an HS256 signer.
func NewSignerHS256(kid string, secret []byte) (*HMACSigner, error) {
	if len(secret) < MinHMACSecretLength {
		return nil, fmt.Errorf("jwtx: HS256 secret must be at least %d bytes", MinHMACSecretLength)
	}
	if kid == "" {
		kid = "hs256"
	}
	s := make([]byte, len(secret))
	copy(s, secret)
	return &HMACSigner{kid: kid, secret: s}, nil
}

func (s *HMACSigner) Alg() string          { return AlgorithmHS256 }
func (s *HMACSigner) KID() string          { return s.kid }
func (s *HMACSigner) VerificationKey() any { return s.secret }

// Sign turns claims into a compact HS256 JWT.
func (s *HMACSigner) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.secret)
}

func (s *HMACSigner) Validate() error {
	if len(s.secret) < MinHMACSecretLength {
		return errors.New("jwtx: HS256 secret too short")
	}
	return nil
}

// asymmetricSigner covers EdDSA, ES256 and RS256. Which one is decided by
// the key parsed from PEM, and it must agree with the requested alg.
type asymmetricSigner struct {
	kid    string
	method jwt.SigningMethod
	key    crypto.Signer
}

func newAsymmetricSigner(alg, kid string, pemKey []byte) (*asymmetricSigner, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, fmt.Errorf("jwtx: invalid PEM for %s key", alg)
	}

	var (
		priv any
		err  error
	)
	switch block.Type {
	case "PRIVATE KEY":
		priv, err = x509.ParsePKCS8PrivateKey(block.Bytes)
	case "RSA PRIVATE KEY":
		priv, err = x509.ParsePKCS1PrivateKey(block.Bytes)
	case "EC PRIVATE KEY":
		priv, err = x509.ParseECPrivateKey(block.Bytes)
	default:
		return nil, fmt.Errorf("jwtx: unsupported PEM type %q", block.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse %s key: %w", alg, err)
	}

	s := &asymmetricSigner{kid: kid}
	switch k := priv.(type) {
	case ed25519.PrivateKey:
		if alg != AlgorithmEdDSA {
			return nil, fmt.Errorf("jwtx: Ed25519 key cannot sign %s", alg)
		}
		s.method, s.key = jwt.SigningMethodEdDSA, k
	case *ecdsa.PrivateKey:
		if alg != AlgorithmES256 || k.Curve != elliptic.P256() {
			return nil, fmt.Errorf("jwtx: ECDSA %s key cannot sign %s", k.Curve.Params().Name, alg)
		}
		s.method, s.key = jwt.SigningMethodES256, k
	case *rsa.PrivateKey:
		if alg != AlgorithmRS256 {
			return nil, fmt.Errorf("jwtx: RSA key cannot sign %s", alg)
		}
		s.method, s.key = jwt.SigningMethodRS256, k
	default:
		return nil, fmt.Errorf("jwtx: unsupported private key type %T", priv)
	}

	if s.kid == "" {
		if s.kid, err = Thumbprint(s.key.Public()); err != nil {
			return nil, err
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *asymmetricSigner) Alg() string          { return s.method.Alg() }
func (s *asymmetricSigner) KID() string          { return s.kid }
func (s *asymmetricSigner) VerificationKey() any { return s.key.Public() }

func (s *asymmetricSigner) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(s.method, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// PublicJWK returns the JWK published at /.well-known/jwks.json.
func (s *asymmetricSigner) PublicJWK() JWK {
	switch pub := s.key.Public().(type) {
	case ed25519.PublicKey:
		return NewEd25519JWK(s.kid, "sig", s.Alg(), pub)
	case *ecdsa.PublicKey:
		return NewES256JWK(s.kid, "sig", s.Alg(), pub)
	case *rsa.PublicKey:
		return NewRSAJWK(s.kid, "sig", s.Alg(), pub)
	}
	return JWK{}
}

func (s *asymmetricSigner) Validate() error {
	switch k := s.key.(type) {
	case ed25519.PrivateKey:
		if len(k) != ed25519.PrivateKeySize {
			return errors.New("jwtx: invalid Ed25519 private key size")
		}
	case *rsa.PrivateKey:
		if k.N.BitLen() < 2048 {
			return errors.New("jwtx: RSA key must be at least 2048 bits")
		}
		return k.Validate()
	case nil:
		return errors.New("jwtx: nil signing key")
	}
	return nil
}

// Thumbprint derives a short stable key id from a public key: the first
// 16 characters of base64url(SHA-256(PKIX DER)).
func Thumbprint(pub any) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("jwtx: marshal public key: %w", err)
	}
	sum := sha256.Sum256(der)
	return base64.RawURLEncoding.EncodeToString(sum[:])[:16], nil
}
