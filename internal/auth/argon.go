package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	// MinPasswordLength and MaxPasswordLength bound what signup accepts.
	// The upper bound keeps hashing cost predictable.
	MinPasswordLength = 6
	MaxPasswordLength = 1024

	saltLength = 16
)

// Params are the argon2id cost settings recorded in every encoded hash.
type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	KeyLength   uint32
}

// DefaultParams is RFC 9106's second recommended option, scaled down for a small server.
var DefaultParams = Params{Memory: 64 * 1024, Iterations: 3, Parallelism: 4, KeyLength: 32}

var b64 = base64.RawStdEncoding

// HashPassword creates an argon2id hash of the password in PHC string format:
//
//	$argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	if len(password) > MaxPasswordLength {
		return "", errors.New("password exceeds maximum length")
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	p := DefaultParams
	key := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
	return phc{params: p, salt: salt, key: key}.String(), nil
}

// VerifyPassword verifies a password against an argon2id encoded hash.
// A malformed hash reports false without an error.
func VerifyPassword(encodedHash, password string) (bool, error) {
	if len(password) > MaxPasswordLength {
		return false, nil
	}
	h, err := parsePHC(encodedHash)
	if err != nil {
		return false, nil //nolint:nilerr // malformed hashes must not reveal why
	}

	p := h.params
	key := argon2.IDKey([]byte(password), h.salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
	return subtle.ConstantTimeCompare(h.key, key) == 1, nil
}

// NeedsRehash reports whether encodedHash was made with settings other than DefaultParams.
// Callers rehash after a successful login.
func NeedsRehash(encodedHash string) bool {
	h, err := parsePHC(encodedHash)
	return err != nil || h.params != DefaultParams
}

type phc struct {
	params Params
	salt   []byte
	key    []byte
}

func (h phc) String() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.Memory, h.params.Iterations, h.params.Parallelism,
		b64.EncodeToString(h.salt), b64.EncodeToString(h.key))
}

func parsePHC(s string) (phc, error) {
	var h phc
	fields := strings.Split(s, "$")
	if len(fields) != 6 || fields[0] != "" {
		return h, errors.New("invalid hash format")
	}
	if fields[1] != "argon2id" {
		return h, fmt.Errorf("unsupported algorithm %q", fields[1])
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil {
		return h, fmt.Errorf("invalid version: %w", err)
	}
	if version != argon2.Version {
		return h, fmt.Errorf("incompatible version %d", version)
	}

	p := &h.params
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return h, fmt.Errorf("invalid parameters: %w", err)
	}

	var err error
	if h.salt, err = b64.DecodeString(fields[4]); err != nil {
		return h, fmt.Errorf("invalid salt: %w", err)
	}
	if h.key, err = b64.DecodeString(fields[5]); err != nil {
		return h, fmt.Errorf("invalid key: %w", err)
	}
	if len(h.key) == 0 {
		return h, errors.New("empty key")
	}
	p.KeyLength = uint32(len(h.key)) //nolint:gosec // bounded by the decoded string
	return h, nil
}
