package domain

import (
	"errors"
	"time"
)

const (
	// RoleUser is the only role produced by self-registration.
	RoleUser = "USER"

	// MaxPasswordBytes is the longest password bcrypt accepts.
	MaxPasswordBytes = 72
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid password")
	ErrAccountInactive    = errors.New("user account is inactive")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)

// User models an account that can log in. Email is the identity.
type User struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
