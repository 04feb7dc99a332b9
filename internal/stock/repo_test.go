package stock

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rmoralesp/fieldstock-backend/pkg/db/models"
	"github.com/rmoralesp/fieldstock-backend/pkg/enums"
	"github.com/rmoralesp/fieldstock-backend/pkg/pagination"
)

func setupStockTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS branches (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  address TEXT,
  phone TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  sku TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT,
  unit TEXT NOT NULL DEFAULT 'unit',
  category TEXT,
  price NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS branch_stocks (
  id TEXT PRIMARY KEY,
  branch_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  current_stock NUMERIC NOT NULL DEFAULT 0,
  min_stock_alert NUMERIC NOT NULL DEFAULT 5,
  location TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (branch_id, product_id)
);`,
		`CREATE TABLE IF NOT EXISTS stock_movements (
  id TEXT PRIMARY KEY,
  branch_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  user_id TEXT,
  type TEXT NOT NULL,
  quantity NUMERIC NOT NULL,
  stock_after NUMERIC NOT NULL,
  reference_kind TEXT,
  reference_id TEXT,
  notes TEXT,
  created_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func seedPair(t *testing.T, conn *gorm.DB) (uuid.UUID, uuid.UUID) {
	t.Helper()

	branch := models.Branch{ID: uuid.New(), Name: "Centro"}
	require.NoError(t, conn.Create(&branch).Error)
	product := models.Product{ID: uuid.New(), SKU: "CBL-001", Name: "Coaxial Cable"}
	require.NoError(t, conn.Create(&product).Error)
	return branch.ID, product.ID
}

func TestRepositoryBalanceRoundTrip(t *testing.T) {
	conn := setupStockTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	branchID, productID := seedPair(t, conn)

	_, err := repo.FindBalance(ctx, branchID, productID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	balance := &models.BranchStock{
		ID:            uuid.New(),
		BranchID:      branchID,
		ProductID:     productID,
		CurrentStock:  decimal.NewFromInt(12),
		MinStockAlert: decimal.NewFromInt(5),
	}
	require.NoError(t, repo.SaveBalance(ctx, balance))

	found, err := repo.FindBalanceForUpdate(ctx, branchID, productID)
	require.NoError(t, err)
	assert.True(t, found.CurrentStock.Equal(decimal.NewFromInt(12)))

	found.CurrentStock = decimal.NewFromInt(7)
	require.NoError(t, repo.SaveBalance(ctx, found))

	again, err := repo.FindBalance(ctx, branchID, productID)
	require.NoError(t, err)
	assert.True(t, again.CurrentStock.Equal(decimal.NewFromInt(7)))
}

func TestRepositoryListMovementsPaginates(t *testing.T) {
	conn := setupStockTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	branchID, productID := seedPair(t, conn)

	base := time.Now().Add(-time.Hour).UTC()
	for i := 0; i < 5; i++ {
		movement := &models.StockMovement{
			ID:         uuid.New(),
			BranchID:   branchID,
			ProductID:  productID,
			Type:       enums.MovementTypeEntry,
			Quantity:   decimal.NewFromInt(int64(i + 1)),
			StockAfter: decimal.NewFromInt(int64(i + 1)),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.CreateMovement(ctx, movement))
	}

	first, err := repo.ListMovements(ctx, branchID, productID, MovementQuery{Limit: 3})
	require.NoError(t, err)
	require.Len(t, first.Movements, 3)
	require.NotEmpty(t, first.NextCursor)
	// Newest first.
	assert.True(t, first.Movements[0].Quantity.Equal(decimal.NewFromInt(5)))
	assert.True(t, first.Movements[2].Quantity.Equal(decimal.NewFromInt(3)))

	cursor, err := pagination.ParseCursor(first.NextCursor)
	require.NoError(t, err)

	second, err := repo.ListMovements(ctx, branchID, productID, MovementQuery{Limit: 3, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, second.Movements, 2)
	assert.Empty(t, second.NextCursor)
	assert.True(t, second.Movements[0].Quantity.Equal(decimal.NewFromInt(2)))
	assert.True(t, second.Movements[1].Quantity.Equal(decimal.NewFromInt(1)))
}

func TestRepositoryListMovementsScopedToPair(t *testing.T) {
	conn := setupStockTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	branchID, productID := seedPair(t, conn)
	otherBranch := models.Branch{ID: uuid.New(), Name: "Norte"}
	require.NoError(t, conn.Create(&otherBranch).Error)

	require.NoError(t, repo.CreateMovement(ctx, &models.StockMovement{
		ID: uuid.New(), BranchID: branchID, ProductID: productID,
		Type: enums.MovementTypeEntry, Quantity: decimal.NewFromInt(4), StockAfter: decimal.NewFromInt(4),
	}))
	require.NoError(t, repo.CreateMovement(ctx, &models.StockMovement{
		ID: uuid.New(), BranchID: otherBranch.ID, ProductID: productID,
		Type: enums.MovementTypeEntry, Quantity: decimal.NewFromInt(9), StockAfter: decimal.NewFromInt(9),
	}))

	page, err := repo.ListMovements(ctx, branchID, productID, MovementQuery{})
	require.NoError(t, err)
	require.Len(t, page.Movements, 1)
	assert.True(t, page.Movements[0].Quantity.Equal(decimal.NewFromInt(4)))
}

func TestRepositoryLowStock(t *testing.T) {
	conn := setupStockTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	branchID, productID := seedPair(t, conn)
	healthy := models.Product{ID: uuid.New(), SKU: "RTR-002", Name: "Router"}
	require.NoError(t, conn.Create(&healthy).Error)

	require.NoError(t, repo.SaveBalance(ctx, &models.BranchStock{
		ID: uuid.New(), BranchID: branchID, ProductID: productID,
		CurrentStock: decimal.NewFromInt(2), MinStockAlert: decimal.NewFromInt(5),
	}))
	require.NoError(t, repo.SaveBalance(ctx, &models.BranchStock{
		ID: uuid.New(), BranchID: branchID, ProductID: healthy.ID,
		CurrentStock: decimal.NewFromInt(40), MinStockAlert: decimal.NewFromInt(5),
	}))

	entries, err := repo.ListLowStock(ctx, branchID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, productID, entries[0].ProductID)
	assert.Equal(t, "Coaxial Cable", entries[0].ProductName)
	assert.Equal(t, "CBL-001", entries[0].SKU)

	count, err := repo.CountLowStock(ctx, branchID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepositoryFindUserNames(t *testing.T) {
	conn := setupStockTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	user := models.User{ID: uuid.New(), Name: "Ana Torres", Email: "ana@fieldstock.test"}
	require.NoError(t, conn.Create(&user).Error)

	names, err := repo.FindUserNames(ctx, []uuid.UUID{user.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.Equal(t, "Ana Torres", names[user.ID])

	empty, err := repo.FindUserNames(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
