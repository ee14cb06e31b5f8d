package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidSession indicates a missing, malformed, expired or forged token.
var ErrInvalidSession = errors.New("invalid session")

// Claims are the claims carried by a session token.
// Subject is the user id; ID identifies the session for revocation.
type Claims struct {
	jwt.RegisteredClaims
}

// Sessions issues and verifies HS256 session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions creates a token issuer. now may be nil.
func NewSessions(secret string, ttl time.Duration, now func() time.Time) *Sessions {
	if now == nil {
		now = time.Now
	}
	return &Sessions{secret: []byte(secret), ttl: ttl, now: now}
}

// TTL returns the session lifetime.
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}

// Issue signs a new session token for the user.
func (s *Sessions) Issue(userID string) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns its claims.
func (s *Sessions) Parse(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrInvalidSession
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}
