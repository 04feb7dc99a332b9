package fieldops

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesp/fieldstock-backend/internal/stock"
	"github.com/rmoralesp/fieldstock-backend/pkg/db/models"
	"github.com/rmoralesp/fieldstock-backend/pkg/enums"
)

// Repository defines persistence operations for service orders and their
// assigned material.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateServiceOrder(ctx context.Context, order *models.ServiceOrder) error
	FindServiceOrder(ctx context.Context, id uuid.UUID) (*models.ServiceOrder, error)
	ListServiceOrders(ctx context.Context, branchID uuid.UUID) ([]models.ServiceOrder, error)
	UpdateServiceOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CreateItem(ctx context.Context, item *models.ServiceOrderItem) error
	FindItem(ctx context.Context, id uuid.UUID) (*models.ServiceOrderItem, error)
	UpdateItem(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindBranch(ctx context.Context, id uuid.UUID) (*models.Branch, error)
}

// stockMover is the slice of the stock service field jobs need: assigning
// material consumes stock, returning unused material restores it.
type stockMover interface {
	AddStockTx(ctx context.Context, tx *gorm.DB, input stock.MovementInput) (*stock.MovementResult, error)
	RemoveStockTx(ctx context.Context, tx *gorm.DB, input stock.MovementInput) (*stock.MovementResult, error)
}

// Service exposes the field job flow around service orders.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.ServiceOrder, error)
	Get(ctx context.Context, id uuid.UUID) (*models.ServiceOrder, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID) ([]models.ServiceOrder, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.ServiceOrderStatus) (*models.ServiceOrder, error)
	AssignMaterial(ctx context.Context, input AssignInput) (*models.ServiceOrderItem, error)
	ReturnMaterial(ctx context.Context, input ReturnInput) (*models.ServiceOrderItem, error)
}
