package handler

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices render as JSON numbers, never quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// productRequest is the body of POST and PUT /api/products. PUT is a full
// overwrite, so omitted optional fields are cleared.
type productRequest struct {
	Name        string           `json:"name"        validate:"notblank"`
	Description string           `json:"description"`
	SKU         string           `json:"sku"         validate:"notblank"`
	Price       *decimal.Decimal `json:"price"       validate:"required,gte=0"`
	Quantity    *int             `json:"quantity"    validate:"omitempty,gte=0"`
	Category    string           `json:"category"`
	ImageURL    string           `json:"imageUrl"`
}

type productResponse struct {
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
