package claims

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrWeakSecret   = errors.New("signing secret must be at least 32 bytes")
)

const MinSecretLength = 32

// Claims is the payload of a session token: the session id plus the owning
// user as subject.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 session tokens.
type Signer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewSigner(secret, issuer string) (*Signer, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	return &Signer{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

func (s *Signer) Sign(sessionID, userID string, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("token signing: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, algorithm, issuer and expiry. Every failure is
// reported as ErrInvalidToken.
func (s *Signer) Parse(tokenString string) (*Claims, error) {
	c := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.SessionID == "" || c.Subject == "" {
		return nil, fmt.Errorf("%w: missing session or subject", ErrInvalidToken)
	}
	return c, nil
}
