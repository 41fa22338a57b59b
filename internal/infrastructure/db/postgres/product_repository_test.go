package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/inventory-service/internal/core/domain"
	"github.com/stockroom/inventory-service/internal/core/ports"
)

var productRowColumns = []string{"id", "name", "description", "sku", "price", "quantity", "category", "image_url", "created_at", "updated_at"}

func setupProductRepo(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *ProductRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewProductRepository(db)
}

func TestBuildFindQuery(t *testing.T) {
	threshold := domain.LowStockThreshold

	testCases := []struct {
		name      string
		filter    ports.ProductFilter
		wantQuery string
		wantArgs  []any
	}{
		{
			name:      "NoFilter",
			filter:    ports.ProductFilter{},
			wantQuery: "SELECT " + productColumns + " FROM products ORDER BY id",
		},
		{
			name:      "NameContainsEscapesWildcards",
			filter:    ports.ProductFilter{NameContains: "50%_off"},
			wantQuery: "SELECT " + productColumns + " FROM products WHERE name ILIKE $1 ORDER BY id",
			wantArgs:  []any{`%50\%\_off%`},
		},
		{
			name:      "CategorySortedByPrice",
			filter:    ports.ProductFilter{Category: "tools", SortByPriceDesc: true},
			wantQuery: "SELECT " + productColumns + " FROM products WHERE category = $1 ORDER BY price DESC, id",
			wantArgs:  []any{"tools"},
		},
		{
			name:      "SKUAndLowStock",
			filter:    ports.ProductFilter{SKU: " AB-1 ", QuantityBelow: &threshold},
			wantQuery: "SELECT " + productColumns + " FROM products WHERE lower(btrim(sku)) = $1 AND quantity < $2 ORDER BY id",
			wantArgs:  []any{"ab-1", threshold},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			query, args := buildFindQuery(tc.filter)
			assert.Equal(t, tc.wantQuery, query)
			assert.Equal(t, tc.wantArgs, args)
		})
	}
}

func TestProductRepository_Create(t *testing.T) {
	db, mock, repo := setupProductRepo(t)
	defer db.Close()

	now := time.Now().UTC()
	p := &domain.Product{Name: "Widget", SKU: "W-1", Price: decimal.RequireFromString("1234567890123456.78"), Quantity: 3, CreatedAt: now, UpdatedAt: now}

	// NUMERIC travels as its exact decimal text.
	mock.ExpectQuery("INSERT INTO products").
		WithArgs("Widget", "", "W-1", "1234567890123456.78", 3, "", "", now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, int64(42), p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Create_DuplicateSKU(t *testing.T) {
	db, mock, repo := setupProductRepo(t)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO products").
		WillReturnError(&pq.Error{Code: uniqueViolation})

	err := repo.Create(context.Background(), &domain.Product{Name: "W", SKU: "w-1"})
	assert.ErrorIs(t, err, domain.ErrDuplicateSKU)
}

func TestProductRepository_FindByID(t *testing.T) {
	db, mock, repo := setupProductRepo(t)
	defer db.Close()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows(productRowColumns).
		AddRow(int64(7), "Hammer", "steel", "HM-1", []byte("1234567890123456.78"), 4, "tools", "", created, created)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + productColumns + " FROM products WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	p, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Hammer", p.Name)
	assert.Equal(t, "1234567890123456.78", p.Price.String())
	assert.True(t, p.CreatedAt.Equal(created))
	assert.True(t, p.IsLowStock())
}

func TestProductRepository_FindByID_NotFound(t *testing.T) {
	db, mock, repo := setupProductRepo(t)
	defer db.Close()

	mock.ExpectQuery("FROM products WHERE id").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductRepository_Find(t *testing.T) {
	db, mock, repo := setupProductRepo(t)
	defer db.Close()

	threshold := domain.LowStockThreshold
	filter := ports.ProductFilter{QuantityBelow: &threshold}
	query, _ := buildFindQuery(filter)

	now := time.Now().UTC()
	rows := sqlmock.NewRows(productRowColumns).
		AddRow(int64(1), "A", "", "X1", "1.00", 5, "", "", now, now)
	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs(threshold).WillReturnRows(rows)

	products, err := repo.Find(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "X1", products[0].SKU)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Find_Empty(t *testing.T) {
	db, mock, repo := setupProductRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows(productRowColumns))

	products, err := repo.Find(context.Background(), ports.ProductFilter{})
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestProductRepository_Update(t *testing.T) {
	testCases := []struct {
		name        string
		rows        int64
		execErr     error
		expectedErr error
	}{
		{"Updated", 1, nil, nil},
		{"Missing", 0, nil, domain.ErrProductNotFound},
		{"DuplicateSKU", 0, &pq.Error{Code: uniqueViolation}, domain.ErrDuplicateSKU},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, repo := setupProductRepo(t)
			defer db.Close()

			exp := mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET"))
			if tc.execErr != nil {
				exp.WillReturnError(tc.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tc.rows))
			}

			err := repo.Update(context.Background(), &domain.Product{ID: 3, Name: "N", SKU: "S"})
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProductRepository_Delete(t *testing.T) {
	db, mock, repo := setupProductRepo(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = $1")).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = $1")).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.DeleteByID(context.Background(), 9))
	assert.ErrorIs(t, repo.DeleteByID(context.Background(), 9), domain.ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_StoreError(t *testing.T) {
	db, mock, repo := setupProductRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnError(sql.ErrConnDone)

	_, err := repo.Find(context.Background(), ports.ProductFilter{})
	assert.True(t, errors.Is(err, sql.ErrConnDone))
}
