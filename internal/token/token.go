// Package token issues and verifies the signed bearer tokens used by the API.
//
// Tokens are self-contained HS256 JWTs carrying the user id and an expiry.
// There is no revocation list: a verified token stays valid until its encoded
// expiry, and logout is purely client-side (the client discards the token).
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure: bad signature, malformed
// token, wrong signing method, or expired claims. Callers must not distinguish
// the cause in responses.
var ErrInvalidToken = errors.New("invalid or expired token")

// Service issues and verifies tokens with a shared HMAC secret.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService returns a Service signing with secret. ttl is the token lifetime;
// when zero it defaults to 24 hours.
func NewService(secret []byte, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{secret: secret, ttl: ttl}
}

// Issue creates a signed token for the given user id.
func (s *Service) Issue(userID int) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature and expiry and returns the encoded user id.
func (s *Service) Verify(tokenStr string) (int, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return 0, ErrInvalidToken
	}
	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}
