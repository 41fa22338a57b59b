package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stockroom/inventory-service/internal/core/domain"
)

type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// InsertProductEvent appends one row to product_events. Anonymous actors are stored as NULL.
func (r *AuditRepository) InsertProductEvent(ctx context.Context, event *domain.ProductEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	actor := sql.NullString{String: event.Actor, Valid: event.Actor != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO product_events (product_id, sku, action, actor, at) VALUES ($1, $2, $3, $4, $5)`,
		event.ProductID, event.SKU, string(event.Action), actor, event.At.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert product event: %w", err)
	}
	return nil
}
