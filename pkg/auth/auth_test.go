package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pbkdf2"
)

func passlibPBKDF2(plain string, salt []byte, rounds int) string {
	ab64 := func(b []byte) string {
		return strings.ReplaceAll(base64.RawStdEncoding.EncodeToString(b), "+", ".")
	}
	sum := pbkdf2.Key([]byte(plain), salt, rounds, 32, sha256.New)
	return fmt.Sprintf("$pbkdf2-sha256$%d$%s$%s", rounds, ab64(salt), ab64(sum))
}

func TestHashPasswordRoundTrip(t *testing.T) {
	for _, password := range []string{"password1", "correct horse battery staple", "ünïcødé"} {
		hash, err := HashPassword(password)
		require.NoError(t, err)

		assert.Equal(t, SchemeBcrypt, Scheme(hash))
		assert.Equal(t, Match, CheckPassword(password, hash))
		assert.True(t, CheckPasswordHash(password, hash))
		assert.False(t, CheckPasswordHash(password+"x", hash))
		assert.False(t, NeedsRehash(hash))
	}
}

func TestCheckPasswordPBKDF2(t *testing.T) {
	stored := passlibPBKDF2("password2", []byte("0123456789abcdef"), 29000)

	assert.Equal(t, SchemePBKDF2SHA256, Scheme(stored))
	assert.Equal(t, Match, CheckPassword("password2", stored))
	assert.Equal(t, Mismatch, CheckPassword("password1", stored))
	assert.True(t, NeedsRehash(stored))
}

func TestCheckPasswordUnknownScheme(t *testing.T) {
	assert.Equal(t, UnknownScheme, CheckPassword("password1", "password1"))
	assert.True(t, CheckPasswordHash("password1", "password1"), "plaintext migration path")
	assert.False(t, CheckPasswordHash("password2", "password1"))
	assert.False(t, CheckPasswordHash("", ""), "empty stored value never verifies")
}

func TestCheckPasswordMalformedHashes(t *testing.T) {
	for _, stored := range []string{
		"$2b$10$tooshort",
		"$pbkdf2-sha256$notanumber$c2FsdA$c3Vt",
		"$pbkdf2-sha256$1000$!!!$c3Vt",
		"$pbkdf2-sha256$1000$c2FsdA",
	} {
		assert.NotPanics(t, func() {
			assert.Equal(t, Mismatch, CheckPassword("anything", stored), stored)
		})
	}
}

func TestJWTManagerRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, err := m.GenerateToken("user1")
	require.NoError(t, err)

	subject, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user1", subject)
}

func TestJWTManagerRejectsExpiredToken(t *testing.T) {
	issuedAt := time.Now().Add(-2 * time.Hour)
	issuer := NewJWTManager("secret", 60*time.Minute).WithClock(func() time.Time { return issuedAt })

	token, err := issuer.GenerateToken("user1")
	require.NoError(t, err)

	// Same key, so the signature is valid; only the expiry fails.
	_, err = NewJWTManager("secret", 60*time.Minute).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Still inside the 60 minute window from the issuer's point of view.
	subject, err := issuer.WithClock(func() time.Time { return issuedAt.Add(59 * time.Minute) }).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user1", subject)
}

func TestJWTManagerRejectsBadSignature(t *testing.T) {
	token, err := NewJWTManager("secret", time.Hour).GenerateToken("user1")
	require.NoError(t, err)

	_, err = NewJWTManager("other-secret", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManagerRejectsNonStringSubject(t *testing.T) {
	for name, claims := range map[string]jwt.MapClaims{
		"numeric sub": {"sub": 42, "exp": time.Now().Add(time.Hour).Unix()},
		"missing sub": {"exp": time.Now().Add(time.Hour).Unix()},
		"missing exp": {"sub": "user1"},
	} {
		t.Run(name, func(t *testing.T) {
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
			require.NoError(t, err)

			_, err = NewJWTManager("secret", time.Hour).ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestJWTManagerRejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.MapClaims{"sub": "user1", "exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTManager("secret", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
