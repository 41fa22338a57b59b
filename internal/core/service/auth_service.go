package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/stockroom/inventory-service/internal/core/domain"
	"github.com/stockroom/inventory-service/internal/core/ports"
)

// AuthService implements registration and login.
type AuthService struct {
	repo    ports.UserRepository
	tokens  ports.TokenIssuer
	claimer ports.KeyClaimer
	log     zerolog.Logger
}

// NewAuthService wires the auth use cases. claimer may be nil, in which case
// uniqueness relies on the existence check and the store's unique index alone.
func NewAuthService(repo ports.UserRepository, tokens ports.TokenIssuer, claimer ports.KeyClaimer, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, claimer: claimer, log: log}
}

// Login verifies the credentials of an active account and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Debug().Str("email", email).Msg("login rejected: unknown email")
		}
		return nil, err
	}

	if !user.Active {
		s.log.Debug().Str("email", email).Msg("login rejected: account inactive")
		return nil, domain.ErrAccountInactive
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.log.Debug().Str("email", email).Msg("login rejected: password mismatch")
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, err
	}

	return &ports.LoginResult{
		Token:     token,
		Email:     user.Email,
		FullName:  user.FullName,
		ExpiresIn: s.tokens.Lifetime().Milliseconds(),
	}, nil
}

// Register creates an active USER account for an email that is not yet taken.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) error {
	if len(password) > domain.MaxPasswordBytes {
		return domain.ErrPasswordTooLong
	}

	release, err := claimKey(ctx, s.claimer, "user:"+email, domain.ErrUserExists, s.log)
	if err != nil {
		return err
	}
	defer release()

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		Role:         domain.RoleUser,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return err
	}

	s.log.Info().Str("email", email).Msg("user registered")
	return nil
}

// claimKey takes a short-lived claim on key. A lost claim returns conflict;
// claimer failures are logged and the caller proceeds unguarded.
func claimKey(ctx context.Context, claimer ports.KeyClaimer, key string, conflict error, log zerolog.Logger) (release func(), err error) {
	noop := func() {}
	if claimer == nil {
		return noop, nil
	}

	token, ok, err := claimer.Claim(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("uniqueness claim failed, proceeding anyway")
		return noop, nil
	}
	if !ok {
		return nil, conflict
	}

	return func() {
		if err := claimer.Release(context.WithoutCancel(ctx), key, token); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to release uniqueness claim")
		}
	}, nil
}
