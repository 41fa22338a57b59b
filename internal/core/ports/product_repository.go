package ports

import (
	"context"

	"github.com/stockroom/inventory-service/internal/core/domain"
)

// ProductFilter is the predicate for ProductRepository.Find. Zero-valued fields
// are ignored, so an empty filter matches every product.
type ProductFilter struct {
	NameContains    string // case-insensitive substring on name
	Category        string // exact match
	SKU             string // case-insensitive exact match
	QuantityBelow   *int   // quantity < *QuantityBelow
	SortByPriceDesc bool   // default order is by id ascending
}

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	// Create assigns p.ID and stores p. A SKU collision on the store's unique
	// index is reported as domain.ErrDuplicateSKU.
	Create(ctx context.Context, p *domain.Product) error
	// Update overwrites the stored product with the same ID.
	Update(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	Find(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
	DeleteByID(ctx context.Context, id int64) error
}
