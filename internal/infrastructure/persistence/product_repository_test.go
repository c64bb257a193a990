package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockProductRepository creates a repository backed by sqlmock
func newMockProductRepository(t *testing.T) (*GormProductRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormProductRepository(gormDB), mock, mockDB
}

func productRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "created_at", "updated_at", "version", "sku", "name", "published", "is_corporate_only",
		"base_price", "currency", "corporate_pricing_enabled", "minimum_order_quantity", "price_tiers",
		"stock_status", "quantity_on_hand", "sales_count",
	})
}

func TestGormProductRepository_FindByID(t *testing.T) {
	t.Run("finds existing product", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		id := uuid.New()
		now := time.Now()
		rows := productRows().AddRow(id, now, now, 3, "DESK-01", "Standing Desk", true, false,
			"500", "INR", true, 50, `[{"minQuantity":50,"pricePerUnit":"450","discount":"0"}]`,
			"in_stock", 120, 4)

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(id, 1).
			WillReturnRows(rows)

		product, err := repo.FindByID(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, id, product.ID)
		assert.Equal(t, 3, product.Version)
		assert.Equal(t, 120, product.QuantityOnHand)
		require.Len(t, product.CorporatePricing.PriceTiers, 1)
		assert.True(t, product.CorporatePricing.PriceTiers[0].PricePerUnit.Equal(decimal.NewFromInt(450)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing row to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		id := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(id, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		product, err := repo.FindByID(context.Background(), id)

		assert.Nil(t, product)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_FindByIDsForUpdate(t *testing.T) {
	t.Run("locks rows in id order", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		a, b := uuid.New(), uuid.New()
		now := time.Now()
		rows := productRows().
			AddRow(a, now, now, 1, "A", "A", true, false, "10", "INR", false, 0, "[]", "in_stock", 5, 0).
			AddRow(b, now, now, 1, "B", "B", true, false, "20", "INR", false, 0, "[]", "pre_order", 0, 0)

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id IN \(\$1,\$2\) ORDER BY id FOR UPDATE`).
			WithArgs(b, a).
			WillReturnRows(rows)

		products, err := repo.FindByIDsForUpdate(context.Background(), []uuid.UUID{b, a})

		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, catalog.StockStatusPreOrder, products[1].StockStatus)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty input skips the query", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		products, err := repo.FindByIDsForUpdate(context.Background(), nil)

		require.NoError(t, err)
		assert.Empty(t, products)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_SaveWithLock(t *testing.T) {
	newProduct := func(t *testing.T) *catalog.Product {
		p, err := catalog.NewProduct("desk-01", "Standing Desk", decimal.NewFromInt(500))
		require.NoError(t, err)
		require.NoError(t, p.SetStock(catalog.StockStatusInStock, 7))
		p.Version = 4
		return p
	}

	t.Run("successful save with matching version", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		p := newProduct(t)
		mock.ExpectExec(`UPDATE "products" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveWithLock(context.Background(), p)

		require.NoError(t, err)
		assert.Equal(t, 5, p.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version returns concurrent modification", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		p := newProduct(t)
		mock.ExpectExec(`UPDATE "products" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), p)

		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrConcurrentModification))
		assert.Equal(t, 4, p.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error is returned as is", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		p := newProduct(t)
		dbErr := errors.New("connection reset")
		mock.ExpectExec(`UPDATE "products" SET`).WillReturnError(dbErr)

		err := repo.SaveWithLock(context.Background(), p)

		assert.ErrorIs(t, err, dbErr)
		assert.Equal(t, 4, p.Version)
	})
}
