package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

// Verdict is the outcome of checking a password against a stored hash.
type Verdict int

const (
	Mismatch Verdict = iota
	Match
	// UnknownScheme means the stored value carries no recognized hash prefix,
	// typically a plaintext password written by an early release.
	UnknownScheme
)

func (v Verdict) String() string {
	switch v {
	case Match:
		return "match"
	case UnknownScheme:
		return "unknown_scheme"
	default:
		return "mismatch"
	}
}

const (
	SchemeBcrypt       = "bcrypt"
	SchemePBKDF2SHA256 = "pbkdf2-sha256"
	SchemeUnknown      = "unknown"

	pbkdf2Prefix = "$pbkdf2-sha256$"
)

// HashPassword hashes with bcrypt, the only scheme new hashes are written in.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Scheme names the hash scheme of a stored value.
func Scheme(stored string) string {
	switch {
	case strings.HasPrefix(stored, "$2a$"), strings.HasPrefix(stored, "$2b$"), strings.HasPrefix(stored, "$2y$"):
		return SchemeBcrypt
	case strings.HasPrefix(stored, pbkdf2Prefix):
		return SchemePBKDF2SHA256
	default:
		return SchemeUnknown
	}
}

// NeedsRehash reports whether a verified hash should be upgraded to bcrypt.
func NeedsRehash(stored string) bool {
	return Scheme(stored) != SchemeBcrypt
}

// CheckPassword compares plain against stored. Malformed hashes of a known scheme are a Mismatch.
func CheckPassword(plain, stored string) Verdict {
	if stored == "" {
		return Mismatch
	}

	switch Scheme(stored) {
	case SchemeBcrypt:
		if bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil {
			return Match
		}
		return Mismatch
	case SchemePBKDF2SHA256:
		if checkPBKDF2(plain, stored) {
			return Match
		}
		return Mismatch
	default:
		return UnknownScheme
	}
}

// CheckPasswordHash is the boolean form: a recognized hash must match, and an
// unrecognized stored value is accepted only when it equals the non-empty plaintext.
func CheckPasswordHash(plain, stored string) bool {
	switch CheckPassword(plain, stored) {
	case Match:
		return true
	case UnknownScheme:
		return plain != "" && subtle.ConstantTimeCompare([]byte(plain), []byte(stored)) == 1
	default:
		return false
	}
}

// checkPBKDF2 verifies passlib's "$pbkdf2-sha256$<rounds>$<salt>$<checksum>" format,
// where salt and checksum use passlib's adapted base64 ('.' for '+', no padding).
func checkPBKDF2(plain, stored string) bool {
	parts := strings.Split(strings.TrimPrefix(stored, pbkdf2Prefix), "$")
	if len(parts) != 3 {
		return false
	}

	rounds, err := strconv.Atoi(parts[0])
	if err != nil || rounds <= 0 {
		return false
	}
	salt, err := decodeAB64(parts[1])
	if err != nil {
		return false
	}
	checksum, err := decodeAB64(parts[2])
	if err != nil || len(checksum) == 0 {
		return false
	}

	derived := pbkdf2.Key([]byte(plain), salt, rounds, len(checksum), sha256.New)
	return subtle.ConstantTimeCompare(derived, checksum) == 1
}

func decodeAB64(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.ReplaceAll(s, ".", "+"))
}
