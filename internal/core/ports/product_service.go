package ports

import (
	"context"

	"github.com/stockroom/inventory-service/internal/core/domain"
)

// ProductService defines use-case operations for products. The caller identity,
// when present, travels in ctx (see domain.CallerFromContext).
type ProductService interface {
	List(ctx context.Context) ([]*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id int64, in domain.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	SearchByName(ctx context.Context, name string) ([]*domain.Product, error)
	ListByCategory(ctx context.Context, category string, sortByPriceDesc bool) ([]*domain.Product, error)
	ListLowStock(ctx context.Context) ([]*domain.Product, error)
}
