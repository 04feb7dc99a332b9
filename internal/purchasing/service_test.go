package purchasing

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rmoralesp/fieldstock-backend/internal/stock"
	"github.com/rmoralesp/fieldstock-backend/pkg/db"
	"github.com/rmoralesp/fieldstock-backend/pkg/db/models"
	"github.com/rmoralesp/fieldstock-backend/pkg/enums"
	pkgerrors "github.com/rmoralesp/fieldstock-backend/pkg/errors"
	"github.com/rmoralesp/fieldstock-backend/pkg/logger"
)

func setupPurchasingTestDB(t *testing.T) *gorm.DB {
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
		`CREATE TABLE IF NOT EXISTS suppliers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT,
  phone TEXT,
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
		`CREATE TABLE IF NOT EXISTS purchase_orders (
  id TEXT PRIMARY KEY,
  branch_id TEXT NOT NULL,
  supplier_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'draft',
  received_date DATETIME,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS purchase_order_items (
  id TEXT PRIMARY KEY,
  purchase_order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity NUMERIC NOT NULL,
  unit_cost NUMERIC NOT NULL DEFAULT 0
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

type purchasingFixture struct {
	conn       *gorm.DB
	service    Service
	branchID   uuid.UUID
	supplierID uuid.UUID
	productID  uuid.UUID
}

func newPurchasingFixture(t *testing.T) *purchasingFixture {
	t.Helper()

	conn := setupPurchasingTestDB(t)

	branch := models.Branch{ID: uuid.New(), Name: "Centro"}
	require.NoError(t, conn.Create(&branch).Error)
	supplier := models.Supplier{ID: uuid.New(), Name: "Redes del Norte"}
	require.NoError(t, conn.Create(&supplier).Error)
	product := models.Product{ID: uuid.New(), SKU: "CBL-001", Name: "Coaxial Cable"}
	require.NoError(t, conn.Create(&product).Error)

	logg := logger.New(logger.Options{Output: io.Discard})
	client := db.NewWithConn(conn)

	stockSvc, err := stock.NewService(stock.NewRepository(conn), client, logg, nil, decimal.NewFromInt(5))
	require.NoError(t, err)

	svc, err := NewService(NewRepository(conn), client, stockSvc, logg)
	require.NoError(t, err)

	return &purchasingFixture{
		conn:       conn,
		service:    svc,
		branchID:   branch.ID,
		supplierID: supplier.ID,
		productID:  product.ID,
	}
}

func (f *purchasingFixture) createOrder(t *testing.T, qty int64) *models.PurchaseOrder {
	t.Helper()
	order, err := f.service.Create(context.Background(), CreateInput{
		BranchID:   f.branchID,
		SupplierID: f.supplierID,
		Items: []ItemInput{
			{ProductID: f.productID, Quantity: decimal.NewFromInt(qty), UnitCost: decimal.NewFromInt(30)},
		},
	})
	require.NoError(t, err)
	return order
}

func TestCreatePurchaseOrder(t *testing.T) {
	f := newPurchasingFixture(t)

	order := f.createOrder(t, 25)
	assert.Equal(t, enums.PurchaseOrderStatusDraft, order.Status)
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].Quantity.Equal(decimal.NewFromInt(25)))

	found, err := f.service.Get(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Nil(t, found.ReceivedDate)
}

func TestCreatePurchaseOrderValidation(t *testing.T) {
	f := newPurchasingFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, CreateInput{SupplierID: f.supplierID, Items: []ItemInput{{ProductID: f.productID, Quantity: decimal.NewFromInt(1)}}})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = f.service.Create(ctx, CreateInput{BranchID: f.branchID, SupplierID: f.supplierID})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = f.service.Create(ctx, CreateInput{
		BranchID: f.branchID, SupplierID: f.supplierID,
		Items: []ItemInput{{ProductID: f.productID, Quantity: decimal.Zero}},
	})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = f.service.Create(ctx, CreateInput{
		BranchID: f.branchID, SupplierID: uuid.New(),
		Items: []ItemInput{{ProductID: f.productID, Quantity: decimal.NewFromInt(1)}},
	})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestReceivePurchaseOrderAddsStock(t *testing.T) {
	f := newPurchasingFixture(t)
	ctx := context.Background()
	order := f.createOrder(t, 25)

	updated, err := f.service.UpdateStatus(ctx, UpdateStatusInput{
		OrderID: order.ID,
		Status:  enums.PurchaseOrderStatusReceived,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.PurchaseOrderStatusReceived, updated.Status)
	require.NotNil(t, updated.ReceivedDate)

	var balance models.BranchStock
	require.NoError(t, f.conn.Where("branch_id = ? AND product_id = ?", f.branchID, f.productID).First(&balance).Error)
	assert.True(t, balance.CurrentStock.Equal(decimal.NewFromInt(25)))

	var movement models.StockMovement
	require.NoError(t, f.conn.Where("branch_id = ?", f.branchID).First(&movement).Error)
	assert.Equal(t, enums.MovementTypeEntry, movement.Type)
	require.NotNil(t, movement.ReferenceKind)
	require.NotNil(t, movement.ReferenceID)
	assert.Equal(t, enums.ReferenceKindPurchaseOrder, *movement.ReferenceKind)
	assert.Equal(t, order.ID, *movement.ReferenceID)
}

func TestReceivePurchaseOrderTwiceFails(t *testing.T) {
	f := newPurchasingFixture(t)
	ctx := context.Background()
	order := f.createOrder(t, 10)

	_, err := f.service.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.PurchaseOrderStatusReceived})
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.PurchaseOrderStatusReceived})
	requireCode(t, err, pkgerrors.CodeStateConflict)

	// The second attempt must not touch the balance.
	var balance models.BranchStock
	require.NoError(t, f.conn.Where("branch_id = ?", f.branchID).First(&balance).Error)
	assert.True(t, balance.CurrentStock.Equal(decimal.NewFromInt(10)))
}

func TestReceiveCanceledPurchaseOrderFails(t *testing.T) {
	f := newPurchasingFixture(t)
	ctx := context.Background()
	order := f.createOrder(t, 10)

	_, err := f.service.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.PurchaseOrderStatusCanceled})
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.PurchaseOrderStatusReceived})
	requireCode(t, err, pkgerrors.CodeStateConflict)
}

func TestMoveBackToDraftClearsReceivedDate(t *testing.T) {
	f := newPurchasingFixture(t)
	ctx := context.Background()
	order := f.createOrder(t, 10)

	_, err := f.service.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.PurchaseOrderStatusRequested})
	require.NoError(t, err)

	updated, err := f.service.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: enums.PurchaseOrderStatusDraft})
	require.NoError(t, err)
	assert.Nil(t, updated.ReceivedDate)

	var stored models.PurchaseOrder
	require.NoError(t, f.conn.Where("id = ?", order.ID).First(&stored).Error)
	assert.Nil(t, stored.ReceivedDate)
	assert.Equal(t, enums.PurchaseOrderStatusDraft, stored.Status)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	f := newPurchasingFixture(t)

	_, err := f.service.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: uuid.New(),
		Status:  enums.PurchaseOrderStatusReceived,
	})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, code, coded.Code())
}
