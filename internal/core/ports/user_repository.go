package ports

import (
	"context"

	"github.com/stockroom/inventory-service/internal/core/domain"
)

// UserRepository defines the interface for user credential persistence.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Create stores a new user. Implementations return domain.ErrUserExists when
	// the store's unique index on email rejects the insert.
	Create(ctx context.Context, user *domain.User) error
}
