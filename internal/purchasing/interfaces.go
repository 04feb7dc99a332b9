package purchasing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesp/fieldstock-backend/internal/stock"
	"github.com/rmoralesp/fieldstock-backend/pkg/db/models"
)

// Repository defines persistence operations for purchase orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreatePurchaseOrder(ctx context.Context, order *models.PurchaseOrder) error
	FindPurchaseOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context, branchID uuid.UUID) ([]models.PurchaseOrder, error)
	UpdatePurchaseOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindBranch(ctx context.Context, id uuid.UUID) (*models.Branch, error)
	FindSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
}

// stockRecorder is the slice of the stock service purchase orders need:
// receiving goods adds stock inside the order's own transaction.
type stockRecorder interface {
	AddStockTx(ctx context.Context, tx *gorm.DB, input stock.MovementInput) (*stock.MovementResult, error)
}

// Service exposes the purchase order flow. Receiving an order is the event
// that adds its items to the branch balance.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.PurchaseOrder, error)
	Get(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID) ([]models.PurchaseOrder, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.PurchaseOrder, error)
}
