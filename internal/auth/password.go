package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"fintra/internal/apperr"

	"golang.org/x/crypto/argon2"
)

const SaltLength = 16

// Argon2Params are the Argon2id cost parameters. Memory is in KiB.
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	KeyLength   uint32
}

var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	KeyLength:   32,
}

// Hasher derives Argon2id password hashes. The pepper is mixed into every
// password; the per-user salt is the Argon2 salt.
type Hasher struct {
	pepper []byte
	params Argon2Params
}

func NewHasher(pepper string, params Argon2Params) *Hasher {
	if params.KeyLength == 0 {
		params.KeyLength = DefaultArgon2Params.KeyLength
	}
	return &Hasher{pepper: []byte(pepper), params: params}
}

func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// Hash returns the encoded form
// $argon2id$v=19$m=<memory>,t=<iterations>,p=<parallelism>$<salt>$<key>.
func (h *Hasher) Hash(password string, salt []byte) (string, error) {
	if len(salt) == 0 {
		return "", fmt.Errorf("hash password: empty salt")
	}
	p := h.params
	key := argon2.IDKey(h.peppered(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches encoded. A mismatch is not an
// error; an encoded value that cannot be parsed is apperr.ErrIntegrity.
func (h *Hasher) Verify(encoded, password string) (bool, error) {
	d, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}
	key := argon2.IDKey(h.peppered(password), d.salt, d.params.Iterations, d.params.Memory, d.params.Parallelism, d.params.KeyLength)
	return subtle.ConstantTimeCompare(key, d.key) == 1, nil
}

// NeedsRehash reports whether encoded was produced with parameters other
// than the hasher's current ones.
func (h *Hasher) NeedsRehash(encoded string) bool {
	d, err := decodeHash(encoded)
	if err != nil {
		return true
	}
	return d.version != argon2.Version || d.params != h.params
}

func (h *Hasher) peppered(password string) []byte {
	if len(h.pepper) == 0 {
		return []byte(password)
	}
	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(password))
	return mac.Sum(nil)
}

type decodedHash struct {
	version int
	params  Argon2Params
	salt    []byte
	key     []byte
}

func decodeHash(encoded string) (decodedHash, error) {
	var d decodedHash

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return d, apperr.New(apperr.ErrIntegrity, "unrecognized password hash format")
	}
	if _, err := fmt.Sscanf(parts[2], "v=%d", &d.version); err != nil {
		return d, apperr.Wrap(apperr.ErrIntegrity, "bad password hash version", err)
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &d.params.Memory, &d.params.Iterations, &d.params.Parallelism); err != nil {
		return d, apperr.Wrap(apperr.ErrIntegrity, "bad password hash parameters", err)
	}
	if d.params.Memory == 0 || d.params.Iterations == 0 || d.params.Parallelism == 0 {
		return d, apperr.New(apperr.ErrIntegrity, "bad password hash parameters")
	}

	var err error
	if d.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(d.salt) == 0 {
		return d, apperr.Wrap(apperr.ErrIntegrity, "bad password hash salt", err)
	}
	if d.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(d.key) == 0 {
		return d, apperr.Wrap(apperr.ErrIntegrity, "bad password hash key", err)
	}
	d.params.KeyLength = uint32(len(d.key))
	return d, nil
}
