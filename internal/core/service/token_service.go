package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errEmptySubject = errors.New("token subject is empty")

// TokenService issues and verifies HS256 bearer tokens whose subject is the user email.
// It holds no mutable state after construction and is safe for concurrent use.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(secret string, lifetime time.Duration, opts ...TokenOption) *TokenService {
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	s := &TokenService{secret: []byte(secret), lifetime: lifetime, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lifetime returns the fixed duration between issuance and expiry.
func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}

// Issue signs a token for subject that expires Lifetime() from now.
func (s *TokenService) Issue(subject string) (string, error) {
	if subject == "" {
		return "", errEmptySubject
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ExtractSubject returns the token subject. ok is false for any token that
// fails to parse or verify.
func (s *TokenService) ExtractSubject(token string) (subject string, ok bool) {
	claims, err := s.parse(token)
	if err != nil || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

// IsValid reports whether token carries a matching signature and has not expired.
func (s *TokenService) IsValid(token string) bool {
	_, err := s.parse(token)
	return err == nil
}

func (s *TokenService) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return claims, nil
}
