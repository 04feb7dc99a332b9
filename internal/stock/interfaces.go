package stock

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesp/fieldstock-backend/pkg/db/models"
	"github.com/rmoralesp/fieldstock-backend/pkg/pagination"
)

// Repository defines persistence operations for the balance store and the
// movement ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindBranch(ctx context.Context, id uuid.UUID) (*models.Branch, error)
	ListBranches(ctx context.Context) ([]models.Branch, error)
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBalance(ctx context.Context, branchID, productID uuid.UUID) (*models.BranchStock, error)
	FindBalanceForUpdate(ctx context.Context, branchID, productID uuid.UUID) (*models.BranchStock, error)
	SaveBalance(ctx context.Context, balance *models.BranchStock) error
	CreateMovement(ctx context.Context, movement *models.StockMovement) error
	ListMovements(ctx context.Context, branchID, productID uuid.UUID, query MovementQuery) (*MovementList, error)
	ListLowStock(ctx context.Context, branchID uuid.UUID) ([]LowStockEntry, error)
	CountLowStock(ctx context.Context, branchID uuid.UUID) (int64, error)
	FindUserNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// Service exposes the stock operations: guarded mutations on the balance
// store plus the read models built from the ledger.
type Service interface {
	AddStock(ctx context.Context, input MovementInput) (*MovementResult, error)
	RemoveStock(ctx context.Context, input MovementInput) (*MovementResult, error)
	AddStockTx(ctx context.Context, tx *gorm.DB, input MovementInput) (*MovementResult, error)
	RemoveStockTx(ctx context.Context, tx *gorm.DB, input MovementInput) (*MovementResult, error)
	AdjustStock(ctx context.Context, input AdjustInput) (*MovementResult, error)
	GetBalance(ctx context.Context, branchID, productID uuid.UUID) (*models.BranchStock, error)
	History(ctx context.Context, branchID, productID uuid.UUID, params pagination.Params) (*HistoryList, error)
	LowStock(ctx context.Context, branchID uuid.UUID) ([]LowStockEntry, error)
}
