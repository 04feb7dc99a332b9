package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmoralesp/fieldstock-backend/pkg/db/models"
	"github.com/rmoralesp/fieldstock-backend/pkg/enums"
	"github.com/rmoralesp/fieldstock-backend/pkg/pagination"
)

// MovementInput carries the data required to add or remove stock for a
// (branch, product) pair. Quantity must be strictly positive; direction is
// decided by the operation, never by the sign.
type MovementInput struct {
	BranchID  uuid.UUID
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UserID    *uuid.UUID
	Reference *Reference
	Notes     *string
}

// AdjustInput sets the balance to an absolute target, usually after a
// physical count. Target must be zero or positive.
type AdjustInput struct {
	BranchID  uuid.UUID
	ProductID uuid.UUID
	Target    decimal.Decimal
	UserID    *uuid.UUID
	Reference *Reference
	Notes     *string
}

// MovementResult reports the outcome of a recorded movement.
type MovementResult struct {
	// Movement is nil when an adjustment matched the current balance and
	// nothing was written.
	Movement *models.StockMovement
	Balance  *models.BranchStock
	// Clamped is true when a removal exceeded the available balance and the
	// new balance was floored at zero.
	Clamped bool
}

// NoOp reports whether the operation left the ledger untouched.
func (r *MovementResult) NoOp() bool {
	return r.Movement == nil
}

// MovementQuery selects one ledger page. Cursor is already decoded; callers
// own turning the client string into it so a bad cursor fails before the
// store is touched.
type MovementQuery struct {
	Limit  int
	Cursor *pagination.Cursor
}

// MovementList wraps one page of raw ledger rows plus the next cursor.
type MovementList struct {
	Movements  []models.StockMovement
	NextCursor string
}

// HistoryEntry is the read-model row returned by the movement history:
// a ledger row with the acting user and origin document resolved to labels.
type HistoryEntry struct {
	ID             uuid.UUID            `json:"id"`
	Type           enums.MovementType   `json:"type"`
	Quantity       decimal.Decimal      `json:"quantity"`
	StockAfter     decimal.Decimal      `json:"stock_after"`
	UserName       string               `json:"user_name"`
	ReferenceKind  *enums.ReferenceKind `json:"reference_kind,omitempty"`
	ReferenceID    *uuid.UUID           `json:"reference_id,omitempty"`
	ReferenceLabel string               `json:"reference_label"`
	Notes          *string              `json:"notes,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

// HistoryList wraps one page of history entries plus the next cursor.
type HistoryList struct {
	Movements  []HistoryEntry `json:"movements"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// LowStockEntry is one balance sitting at or below its alert threshold.
type LowStockEntry struct {
	ProductID     uuid.UUID       `json:"product_id" gorm:"column:product_id"`
	ProductName   string          `json:"product_name" gorm:"column:product_name"`
	SKU           string          `json:"sku" gorm:"column:sku"`
	CurrentStock  decimal.Decimal `json:"current_stock" gorm:"column:current_stock"`
	MinStockAlert decimal.Decimal `json:"min_stock_alert" gorm:"column:min_stock_alert"`
}
