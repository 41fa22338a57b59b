package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/stockroom/inventory-service/internal/core/domain"
	"github.com/stockroom/inventory-service/internal/core/ports"
)

type stubProductRepo struct {
	products map[int64]*domain.Product
	nextID   int64
	findErr  error
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[int64]*domain.Product)}
}

func cloneProduct(p *domain.Product) *domain.Product {
	clone := *p
	return &clone
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) error {
	r.nextID++
	p.ID = r.nextID
	r.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *stubProductRepo) Update(_ context.Context, p *domain.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	r.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

func (r *stubProductRepo) Find(_ context.Context, f ports.ProductFilter) ([]*domain.Product, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := make([]*domain.Product, 0)
	for _, p := range r.products {
		if f.NameContains != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.NameContains)) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.SKU != "" && domain.NormalizeSKU(p.SKU) != domain.NormalizeSKU(f.SKU) {
			continue
		}
		if f.QuantityBelow != nil && p.Quantity >= *f.QuantityBelow {
			continue
		}
		out = append(out, cloneProduct(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if f.SortByPriceDesc {
			return out[i].Price.GreaterThan(out[j].Price)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *stubProductRepo) DeleteByID(_ context.Context, id int64) error {
	delete(r.products, id)
	return nil
}

type stubAuditRepo struct {
	events []*domain.ProductEvent
	err    error
}

func (r *stubAuditRepo) InsertProductEvent(_ context.Context, e *domain.ProductEvent) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, e)
	return nil
}

func newProductSvc(repo *stubProductRepo, audit *stubAuditRepo) *ProductService {
	if audit == nil {
		return NewProductService(repo, nil, nil, zerolog.Nop())
	}
	return NewProductService(repo, audit, nil, zerolog.Nop())
}

func input(name, sku string, price float64, qty int, category string) domain.ProductInput {
	return domain.ProductInput{Name: name, SKU: sku, Price: decimal.NewFromFloat(price), Quantity: qty, Category: category}
}

func TestProductService_CreateThenGet(t *testing.T) {
	svc := newProductSvc(newStubProductRepo(), &stubAuditRepo{})
	ctx := context.Background()

	created, err := svc.Create(ctx, input("Widget", "W-1", 9.99, 3, "tools"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected store-assigned id")
	}
	if created.CreatedAt.IsZero() || !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("expected matching creation timestamps, got %v / %v", created.CreatedAt, created.UpdatedAt)
	}

	got, err := svc.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if got.Name != "Widget" || got.SKU != "W-1" || !got.Price.Equal(decimal.RequireFromString("9.99")) || got.Quantity != 3 {
		t.Fatalf("unexpected product %+v", got)
	}
}

func TestProductService_Create_DuplicateSKUIgnoresCase(t *testing.T) {
	repo := newStubProductRepo()
	svc := newProductSvc(repo, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, input("First", "ABC-1", 1, 1, "")); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.Create(ctx, input("Second", "abc-1", 2, 2, "")); !errors.Is(err, domain.ErrDuplicateSKU) {
		t.Fatalf("expected ErrDuplicateSKU, got %v", err)
	}
	if len(repo.products) != 1 {
		t.Fatalf("expected one stored product, got %d", len(repo.products))
	}
}

func TestProductService_Create_Invalid(t *testing.T) {
	svc := newProductSvc(newStubProductRepo(), nil)

	if _, err := svc.Create(context.Background(), input("", "S", 1, 1, "")); !errors.Is(err, domain.ErrInvalidProduct) {
		t.Fatalf("expected ErrInvalidProduct, got %v", err)
	}
}

func TestProductService_Create_ClaimHeld(t *testing.T) {
	claimer := newStubClaimer()
	claimer.held["sku:dup-9"] = "other"
	svc := NewProductService(newStubProductRepo(), nil, claimer, zerolog.Nop())

	if _, err := svc.Create(context.Background(), input("Racer", "DUP-9", 1, 1, "")); !errors.Is(err, domain.ErrDuplicateSKU) {
		t.Fatalf("expected ErrDuplicateSKU while the claim is held, got %v", err)
	}
}

func TestProductService_Update_NotFound(t *testing.T) {
	svc := newProductSvc(newStubProductRepo(), nil)

	if _, err := svc.Update(context.Background(), 42, input("X", "X", 1, 1, "")); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductService_Update_OverwritesAllFields(t *testing.T) {
	repo := newStubProductRepo()
	svc := newProductSvc(repo, nil)
	ctx := context.Background()

	created, _ := svc.Create(ctx, domain.ProductInput{
		Name: "Old", Description: "old desc", SKU: "OLD-1", Price: decimal.NewFromInt(5), Quantity: 5,
		Category: "c1", ImageURL: "http://img/old.png",
	})

	updated, err := svc.Update(ctx, created.ID, input("New", "NEW-1", 7.5, 1, "c2"))
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Description != "" || updated.ImageURL != "" {
		t.Fatalf("omitted fields must be cleared, got %+v", updated)
	}
	if updated.Name != "New" || updated.SKU != "NEW-1" || updated.Category != "c2" {
		t.Fatalf("unexpected updated product %+v", updated)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatal("createdAt must not change on update")
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("updatedAt must move forward: %v -> %v", created.UpdatedAt, updated.UpdatedAt)
	}
}

func TestProductService_Update_FrozenClockStillAdvances(t *testing.T) {
	svc := newProductSvc(newStubProductRepo(), nil)
	frozen := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return frozen }
	ctx := context.Background()

	created, _ := svc.Create(ctx, input("A", "A-1", 1, 1, ""))
	updated, err := svc.Update(ctx, created.ID, input("A2", "A-1", 1, 1, ""))
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatal("updatedAt must be strictly later even when the clock does not move")
	}
}

func TestProductService_Update_SKUConflict(t *testing.T) {
	svc := newProductSvc(newStubProductRepo(), nil)
	ctx := context.Background()

	_, _ = svc.Create(ctx, input("A", "SKU-A", 1, 1, ""))
	b, _ := svc.Create(ctx, input("B", "SKU-B", 1, 1, ""))

	if _, err := svc.Update(ctx, b.ID, input("B", "sku-a", 1, 1, "")); !errors.Is(err, domain.ErrDuplicateSKU) {
		t.Fatalf("expected ErrDuplicateSKU, got %v", err)
	}
	if _, err := svc.Update(ctx, b.ID, input("B renamed", "sku-b", 1, 1, "")); err != nil {
		t.Fatalf("keeping the own SKU in another case must succeed, got %v", err)
	}
}

func TestProductService_Delete(t *testing.T) {
	repo := newStubProductRepo()
	audit := &stubAuditRepo{}
	svc := newProductSvc(repo, audit)
	ctx := context.Background()

	if err := svc.Delete(ctx, 7); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	p, _ := svc.Create(ctx, input("Gone", "G-1", 1, 1, ""))
	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := svc.GetByID(ctx, p.ID); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected deleted product to be gone, got %v", err)
	}
	last := audit.events[len(audit.events)-1]
	if last.Action != domain.ActionDelete || last.ProductID != p.ID || last.SKU != "G-1" {
		t.Fatalf("unexpected audit event %+v", last)
	}
}

func TestProductService_ListLowStock(t *testing.T) {
	svc := newProductSvc(newStubProductRepo(), nil)
	ctx := context.Background()

	_, _ = svc.Create(ctx, input("A", "X1", 1, 5, ""))
	_, _ = svc.Create(ctx, input("B", "X2", 1, 20, ""))
	_, _ = svc.Create(ctx, input("C", "X3", 1, domain.LowStockThreshold, ""))

	got, err := svc.ListLowStock(ctx)
	if err != nil {
		t.Fatalf("ListLowStock returned error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "A" {
		t.Fatalf("expected only A, got %+v", got)
	}
}

func TestProductService_SearchByName(t *testing.T) {
	svc := newProductSvc(newStubProductRepo(), nil)
	ctx := context.Background()

	_, _ = svc.Create(ctx, input("Blue Widget", "B-1", 1, 1, ""))
	_, _ = svc.Create(ctx, input("Gadget", "G-1", 1, 1, ""))

	got, err := svc.SearchByName(ctx, "WIDG")
	if err != nil {
		t.Fatalf("SearchByName returned error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Blue Widget" {
		t.Fatalf("unexpected search result %+v", got)
	}
}

func TestProductService_ListByCategory(t *testing.T) {
	svc := newProductSvc(newStubProductRepo(), nil)
	ctx := context.Background()

	_, _ = svc.Create(ctx, input("Cheap", "T-1", 2, 1, "tools"))
	_, _ = svc.Create(ctx, input("Pricey", "T-2", 20, 1, "tools"))
	_, _ = svc.Create(ctx, input("Other", "O-1", 50, 1, "toys"))

	got, err := svc.ListByCategory(ctx, "tools", true)
	if err != nil {
		t.Fatalf("ListByCategory returned error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Pricey" || got[1].Name != "Cheap" {
		t.Fatalf("expected tools sorted by price desc, got %+v", got)
	}

	none, _ := svc.ListByCategory(ctx, "Tools", false)
	if len(none) != 0 {
		t.Fatalf("category match must be exact, got %+v", none)
	}
}

func TestProductService_ListByCategory_EmptyNameMatchesNothing(t *testing.T) {
	svc := newProductSvc(newStubProductRepo(), nil)
	ctx := context.Background()

	_, _ = svc.Create(ctx, input("Hammer", "T-1", 2, 1, "tools"))
	_, _ = svc.Create(ctx, input("Loose", "L-1", 2, 1, ""))

	got, err := svc.ListByCategory(ctx, "", false)
	if err != nil {
		t.Fatalf("ListByCategory returned error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected an empty list, got %+v", got)
	}
}

func TestProductService_List_StoreFailure(t *testing.T) {
	repo := newStubProductRepo()
	repo.findErr = errors.New("connection refused")
	svc := newProductSvc(repo, nil)

	if _, err := svc.List(context.Background()); err == nil {
		t.Fatal("expected store error to propagate")
	}
}

func TestProductService_AuditRecordsCaller(t *testing.T) {
	audit := &stubAuditRepo{}
	svc := newProductSvc(newStubProductRepo(), audit)
	ctx := domain.WithCaller(context.Background(), domain.Caller{Email: "ops@example.com"})

	p, err := svc.Create(ctx, input("Audited", "AU-1", 1, 1, ""))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if len(audit.events) != 1 {
		t.Fatalf("expected one audit event, got %d", len(audit.events))
	}
	e := audit.events[0]
	if e.Actor != "ops@example.com" || e.Action != domain.ActionCreate || e.ProductID != p.ID || e.SKU != "AU-1" {
		t.Fatalf("unexpected audit event %+v", e)
	}
}

func TestProductService_AuditFailureIsNotFatal(t *testing.T) {
	audit := &stubAuditRepo{err: errors.New("audit store down")}
	svc := newProductSvc(newStubProductRepo(), audit)

	if _, err := svc.Create(context.Background(), input("Still", "ST-1", 1, 1, "")); err != nil {
		t.Fatalf("audit failure must not fail the write, got %v", err)
	}
}
