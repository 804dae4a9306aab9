package claims

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewSignerRejectsShortSecret(t *testing.T) {
	_, err := NewSigner("short", "")
	assert.ErrorIs(t, err, ErrWeakSecret)
}

func TestSignAndParse(t *testing.T) {
	s, err := NewSigner(testSecret, "http://localhost:3000")
	require.NoError(t, err)

	token, err := s.Sign("sid-1", "u1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	c, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", c.SessionID)
	assert.Equal(t, "u1", c.Subject)
}

func TestParseFailures(t *testing.T) {
	s, err := NewSigner(testSecret, "issuer-a")
	require.NoError(t, err)

	expired, err := s.Sign("sid", "u1", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	other, err := NewSigner(strings.Repeat("z", 32), "issuer-a")
	require.NoError(t, err)
	foreign, err := other.Sign("sid", "u1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	otherIssuer, err := NewSigner(testSecret, "issuer-b")
	require.NoError(t, err)
	wrongIssuer, err := otherIssuer.Sign("sid", "u1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		SessionID:        "sid",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: "issuer-a", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSession, err := s.Sign("", "u1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	tests := map[string]string{
		"expired":       expired,
		"foreign key":   foreign,
		"wrong issuer":  wrongIssuer,
		"alg none":      unsigned,
		"garbage":       "not-a-token",
		"empty":         "",
		"no session id": noSession,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			c, err := s.Parse(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, c)
		})
	}
}
