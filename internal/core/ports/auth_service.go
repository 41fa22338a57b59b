package ports

import (
	"context"
	"time"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token    string
	Email    string
	FullName string
	// ExpiresIn is the token lifetime in milliseconds, not an absolute time.
	ExpiresIn int64
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, email, password, fullName string) error
}

// TokenIssuer issues signed bearer tokens for a subject.
type TokenIssuer interface {
	Issue(subject string) (string, error)
	Lifetime() time.Duration
}

// TokenVerifier validates bearer tokens. Neither method reports why a token was
// rejected: malformed, tampered and expired tokens look the same to callers.
type TokenVerifier interface {
	ExtractSubject(token string) (string, bool)
	IsValid(token string) bool
}
