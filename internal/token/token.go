// Package token issues and verifies the self-contained bearer
// credentials used by the auth gate. A token binds a user identity for
// a fixed window; no server-side session state exists, so every gate
// decision derives from the signed contents plus the secret.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthenticated is the single failure Verify reports. Missing,
// malformed, expired and badly signed tokens are deliberately
// indistinguishable so the error cannot guide forgery attempts.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is the verified user identity embedded in a token.
type Identity struct {
	UserID string
	Email  string
}

type claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Service signs and verifies access tokens with a shared HMAC secret.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// DefaultTTL is the access token lifetime.
const DefaultTTL = time.Hour

// New creates a token service. A zero or negative ttl falls back to
// DefaultTTL.
func New(secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for an already-verified identity. It returns the
// token and its lifetime in seconds. No storage is touched.
func (s *Service) Issue(id Identity) (string, int64, error) {
	now := time.Now()
	c := &claims{
		UserID: id.UserID,
		Email:  id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", 0, err
	}
	return signed, int64(s.ttl.Seconds()), nil
}

// Verify decodes a presented token and returns the embedded identity.
func (s *Service) Verify(tokenStr string) (Identity, error) {
	c := &claims{}
	tok, err := jwt.ParseWithClaims(tokenStr, c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthenticated
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid || c.UserID == "" {
		return Identity{}, ErrUnauthenticated
	}
	return Identity{UserID: c.UserID, Email: c.Email}, nil
}
