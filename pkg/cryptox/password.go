package cryptox

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Supported password hashing algorithms.
const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmBcrypt   = "bcrypt"
)

var (
	ErrPasswordMismatch  = errors.New("password does not match")
	ErrInvalidHashFormat = errors.New("invalid hash format")
)

// Argon2Params are the tunables for argon2id. They are written into every
// hash, so changing them only affects new hashes.
type Argon2Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	KeyLength   uint32
	SaltLength  uint32
}

// DefaultArgon2Params follow the OWASP minimum for argon2id (19 MiB, t=2, p=1).
var DefaultArgon2Params = Argon2Params{
	Memory:      19 * 1024,
	Iterations:  2,
	Parallelism: 1,
	KeyLength:   32,
	SaltLength:  16,
}

// HasherOptions configures a Hasher.
type HasherOptions struct {
	// Algorithm used for new hashes: "argon2id" (default) or "bcrypt".
	Algorithm string

	// Argon2 parameters; zero value means DefaultArgon2Params.
	Argon2 Argon2Params

	// BcryptCost; zero means bcrypt.DefaultCost.
	BcryptCost int

	// Pepper is a server-side secret mixed into every hash. Optional.
	Pepper string
}

// Hasher hashes and verifies passwords. Verification understands every
// supported format regardless of which algorithm is configured for new
// hashes. A Hasher is immutable and safe for concurrent use.
type Hasher struct {
	alg        string
	argon      Argon2Params
	bcryptCost int
	pepper     string
}

// NewHasher validates opts and returns a Hasher.
func NewHasher(opts HasherOptions) (*Hasher, error) {
	h := &Hasher{
		alg:        strings.ToLower(strings.TrimSpace(opts.Algorithm)),
		argon:      opts.Argon2,
		bcryptCost: opts.BcryptCost,
		pepper:     opts.Pepper,
	}
	if h.alg == "" {
		h.alg = AlgorithmArgon2id
	}
	if h.argon == (Argon2Params{}) {
		h.argon = DefaultArgon2Params
	}
	if h.bcryptCost == 0 {
		h.bcryptCost = bcrypt.DefaultCost
	}

	switch h.alg {
	case AlgorithmArgon2id:
		if h.argon.Memory == 0 || h.argon.Iterations == 0 || h.argon.Parallelism == 0 ||
			h.argon.KeyLength == 0 || h.argon.SaltLength == 0 {
			return nil, fmt.Errorf("cryptox: argon2 parameters must be non-zero")
		}
	case AlgorithmBcrypt:
		if h.bcryptCost < bcrypt.MinCost || h.bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("cryptox: bcrypt cost %d out of range [%d, %d]",
				h.bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
		}
	default:
		return nil, fmt.Errorf("cryptox: unsupported password algorithm %q", opts.Algorithm)
	}

	return h, nil
}

// Algorithm returns the algorithm used for new hashes.
func (h *Hasher) Algorithm() string { return h.alg }

// Hash returns a self-describing encoded hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	if h.alg == AlgorithmBcrypt {
		out, err := bcrypt.GenerateFromPassword(h.bcryptInput(password), h.bcryptCost)
		if err != nil {
			return "", fmt.Errorf("cryptox: bcrypt: %w", err)
		}
		return string(out), nil
	}

	salt := make([]byte, h.argon.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	sum := argon2.IDKey(
		[]byte(password+h.pepper),
		salt,
		h.argon.Iterations,
		h.argon.Memory,
		h.argon.Parallelism,
		h.argon.KeyLength,
	)

	// PHC string format
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.argon.Memory,
		h.argon.Iterations,
		h.argon.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// Verify checks password against an encoded hash. It returns nil on a
// match, ErrPasswordMismatch on a mismatch, and an error wrapping
// ErrInvalidHashFormat when the stored hash can't be parsed.
func (h *Hasher) Verify(password, encoded string) error {
	switch {
	case strings.HasPrefix(encoded, "$argon2id$"):
		return h.verifyArgon2id(password, encoded)
	case isBcrypt(encoded):
		return h.verifyBcrypt(password, encoded)
	default:
		return fmt.Errorf("%w: unrecognised algorithm", ErrInvalidHashFormat)
	}
}

// NeedsRehash reports whether encoded was produced with a different
// algorithm or weaker parameters than this Hasher would use today.
func (h *Hasher) NeedsRehash(encoded string) bool {
	switch {
	case strings.HasPrefix(encoded, "$argon2id$"):
		if h.alg != AlgorithmArgon2id {
			return true
		}
		p, _, _, err := parseArgon2id(encoded)
		if err != nil {
			return true
		}
		return p.Memory < h.argon.Memory || p.Iterations < h.argon.Iterations ||
			p.Parallelism < h.argon.Parallelism || p.KeyLength < h.argon.KeyLength
	case isBcrypt(encoded):
		if h.alg != AlgorithmBcrypt {
			return true
		}
		cost, err := bcrypt.Cost([]byte(encoded))
		return err != nil || cost < h.bcryptCost
	default:
		return true
	}
}

func (h *Hasher) verifyArgon2id(password, encoded string) error {
	p, salt, want, err := parseArgon2id(encoded)
	if err != nil {
		return err
	}

	got := argon2.IDKey(
		[]byte(password+h.pepper),
		salt,
		p.Iterations,
		p.Memory,
		p.Parallelism,
		p.KeyLength,
	)
	if subtle.ConstantTimeCompare(got, want) == 1 {
		return nil
	}
	return ErrPasswordMismatch
}

func (h *Hasher) verifyBcrypt(password, encoded string) error {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), h.bcryptInput(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return fmt.Errorf("%w: %v", ErrInvalidHashFormat, err)
	}
}

// bcryptInput pre-hashes the peppered password with HMAC-SHA256 so the
// input always fits bcrypt's 72 byte limit.
func (h *Hasher) bcryptInput(password string) []byte {
	mac := hmac.New(sha256.New, []byte(h.pepper))
	mac.Write([]byte(password))
	return []byte(base64.RawStdEncoding.EncodeToString(mac.Sum(nil)))
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

// parseArgon2id splits $argon2id$v=19$m=X,t=Y,p=Z$salt$hash.
func parseArgon2id(encoded string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return p, nil, nil, fmt.Errorf("%w: expected 6 parts", ErrInvalidHashFormat)
	}
	if parts[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf("%w: not argon2id", ErrInvalidHashFormat)
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return p, nil, nil, fmt.Errorf("%w: wrong version", ErrInvalidHashFormat)
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return p, nil, nil, fmt.Errorf("%w: parameters: %v", ErrInvalidHashFormat, err)
	}
	if p.Memory == 0 || p.Iterations == 0 || p.Parallelism == 0 {
		return p, nil, nil, fmt.Errorf("%w: zero parameter", ErrInvalidHashFormat)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: salt: %v", ErrInvalidHashFormat, err)
	}
	sum, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: hash: %v", ErrInvalidHashFormat, err)
	}
	if len(sum) == 0 {
		return p, nil, nil, fmt.Errorf("%w: empty hash", ErrInvalidHashFormat)
	}

	p.SaltLength = uint32(len(salt)) // #nosec G115
	p.KeyLength = uint32(len(sum))   // #nosec G115
	return p, salt, sum, nil
}
