package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BranchStock is the authoritative current balance for one (branch, product)
// pair. CurrentStock always equals the stock_after of the latest StockMovement
// for the pair; every write happens under a row lock inside the same
// transaction that appends the movement.
type BranchStock struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BranchID      uuid.UUID       `gorm:"column:branch_id;type:uuid;not null;uniqueIndex:idx_branch_stocks_pair"`
	ProductID     uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_branch_stocks_pair"`
	CurrentStock  decimal.Decimal `gorm:"column:current_stock;type:numeric(12,2);not null;default:0"`
	MinStockAlert decimal.Decimal `gorm:"column:min_stock_alert;type:numeric(12,2);not null;default:5"`
	Location      *string         `gorm:"column:location"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// IsLow reports whether the balance sits at or below its alert threshold.
func (b BranchStock) IsLow() bool {
	return b.CurrentStock.LessThanOrEqual(b.MinStockAlert)
}
