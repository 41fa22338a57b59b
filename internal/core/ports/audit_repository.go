package ports

import (
	"context"

	"github.com/stockroom/inventory-service/internal/core/domain"
)

// AuditRepository persists the product mutation audit trail.
type AuditRepository interface {
	InsertProductEvent(ctx context.Context, event *domain.ProductEvent) error
}
