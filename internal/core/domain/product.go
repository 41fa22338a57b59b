package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LowStockThreshold is the quantity below which a product counts as low stock.
const LowStockThreshold = 10

var (
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateSKU    = errors.New("SKU already exists")
	ErrInvalidProduct  = errors.New("invalid product")
)

// Product is a stocked item. ID is assigned by the store on creation.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	SKU         string          `json:"sku"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"imageUrl"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// IsLowStock reports whether the product quantity is below LowStockThreshold.
func (p *Product) IsLowStock() bool {
	return p.Quantity < LowStockThreshold
}

// Apply overwrites every mutable field with the values from in. The SKU is
// stored trimmed so every store compares the same key.
func (p *Product) Apply(in ProductInput) {
	p.Name = in.Name
	p.Description = in.Description
	p.SKU = strings.TrimSpace(in.SKU)
	p.Price = in.Price
	p.Quantity = in.Quantity
	p.Category = in.Category
	p.ImageURL = in.ImageURL
}

// ProductInput carries the mutable fields of a product as supplied by a caller.
type ProductInput struct {
	Name        string
	Description string
	SKU         string
	Price       decimal.Decimal
	Quantity    int
	Category    string
	ImageURL    string
}

// Validate checks the product invariants. The returned error wraps ErrInvalidProduct.
func (in ProductInput) Validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: product name is required", ErrInvalidProduct)
	case strings.TrimSpace(in.SKU) == "":
		return fmt.Errorf("%w: SKU is required", ErrInvalidProduct)
	case in.Price.IsNegative():
		return fmt.Errorf("%w: price must be greater than or equal to 0", ErrInvalidProduct)
	case in.Quantity < 0:
		return fmt.Errorf("%w: quantity must be greater than or equal to 0", ErrInvalidProduct)
	}
	return nil
}

// NormalizeSKU returns the key used for case-insensitive SKU comparison.
func NormalizeSKU(sku string) string {
	return strings.ToLower(strings.TrimSpace(sku))
}

// ProductAction names a mutation recorded in the audit trail.
type ProductAction string

const (
	ActionCreate ProductAction = "create"
	ActionUpdate ProductAction = "update"
	ActionDelete ProductAction = "delete"
)

// ProductEvent is an audit record of a product mutation.
type ProductEvent struct {
	ProductID int64
	SKU       string
	Action    ProductAction
	Actor     string // caller email, empty for anonymous callers
	At        time.Time
}
