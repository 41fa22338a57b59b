package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockroom/inventory-service/internal/core/domain"
	"github.com/stockroom/inventory-service/internal/core/ports"
)

type ProductService struct {
	repo    ports.ProductRepository
	audit   ports.AuditRepository
	claimer ports.KeyClaimer
	logger  zerolog.Logger
	now     func() time.Time
}

// NewProductService wires the product use cases. audit and claimer are optional.
func NewProductService(repo ports.ProductRepository, audit ports.AuditRepository, claimer ports.KeyClaimer, logger zerolog.Logger) *ProductService {
	return &ProductService{
		repo:    repo,
		audit:   audit,
		claimer: claimer,
		logger:  logger,
		now:     time.Now,
	}
}

// List returns every product in store order.
func (s *ProductService) List(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.Find(ctx, ports.ProductFilter{})
}

func (s *ProductService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

// Create stores a new product after rejecting a case-insensitive SKU collision.
func (s *ProductService) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	release, err := claimKey(ctx, s.claimer, "sku:"+domain.NormalizeSKU(in.SKU), domain.ErrDuplicateSKU, s.logger)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.findBySKU(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateSKU
	}

	now := s.timestamp()
	p := &domain.Product{CreatedAt: now, UpdatedAt: now}
	p.Apply(in)

	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error().Err(err).Str("sku", in.SKU).Msg("failed to create product")
		return nil, err
	}

	s.record(ctx, p, domain.ActionCreate)
	s.logger.Info().Int64("product_id", p.ID).Str("sku", p.SKU).Msg("product created")
	return p, nil
}

// Update overwrites every mutable field of an existing product.
func (s *ProductService) Update(ctx context.Context, id int64, in domain.ProductInput) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}

	if domain.NormalizeSKU(in.SKU) != domain.NormalizeSKU(p.SKU) {
		release, err := claimKey(ctx, s.claimer, "sku:"+domain.NormalizeSKU(in.SKU), domain.ErrDuplicateSKU, s.logger)
		if err != nil {
			return nil, err
		}
		defer release()

		other, err := s.findBySKU(ctx, in.SKU)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, domain.ErrDuplicateSKU
		}
	}

	previous := p.UpdatedAt
	p.Apply(in)
	p.UpdatedAt = s.timestamp()
	if !p.UpdatedAt.After(previous) {
		p.UpdatedAt = previous.Add(time.Millisecond)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to update product")
		return nil, err
	}

	s.record(ctx, p, domain.ActionUpdate)
	return p, nil
}

// Delete removes a product. The audit event keeps the SKU it had.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.record(ctx, p, domain.ActionDelete)
	return nil
}

func (s *ProductService) SearchByName(ctx context.Context, name string) ([]*domain.Product, error) {
	return s.repo.Find(ctx, ports.ProductFilter{NameContains: name})
}

// ListByCategory returns the products whose category equals category exactly.
// Uncategorised products belong to no category, so an empty name matches nothing.
func (s *ProductService) ListByCategory(ctx context.Context, category string, sortByPriceDesc bool) ([]*domain.Product, error) {
	if category == "" {
		return []*domain.Product{}, nil
	}
	return s.repo.Find(ctx, ports.ProductFilter{Category: category, SortByPriceDesc: sortByPriceDesc})
}

// ListLowStock returns the products whose quantity is below domain.LowStockThreshold.
func (s *ProductService) ListLowStock(ctx context.Context) ([]*domain.Product, error) {
	threshold := domain.LowStockThreshold
	return s.repo.Find(ctx, ports.ProductFilter{QuantityBelow: &threshold})
}

func (s *ProductService) findBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	matches, err := s.repo.Find(ctx, ports.ProductFilter{SKU: sku})
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

// timestamp is millisecond precision, the coarsest resolution of the supported stores.
func (s *ProductService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// record appends to the audit trail. Failures are logged, never returned.
func (s *ProductService) record(ctx context.Context, p *domain.Product, action domain.ProductAction) {
	if s.audit == nil {
		return
	}
	event := &domain.ProductEvent{
		ProductID: p.ID,
		SKU:       p.SKU,
		Action:    action,
		Actor:     domain.CallerFromContext(ctx).Email,
		At:        s.timestamp(),
	}
	if err := s.audit.InsertProductEvent(ctx, event); err != nil {
		s.logger.Warn().Err(err).Int64("product_id", p.ID).Str("action", string(action)).Msg("failed to insert audit event")
	}
}
