package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmoralesp/fieldstock-backend/pkg/enums"
)

// StockMovement is one immutable ledger entry. Rows are inserted inside the
// same transaction as the balance update and never touched again; corrections
// are recorded as new adjustment movements.
type StockMovement struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BranchID      uuid.UUID            `gorm:"column:branch_id;type:uuid;not null;index:idx_stock_movements_pair_time,priority:1"`
	ProductID     uuid.UUID            `gorm:"column:product_id;type:uuid;not null;index:idx_stock_movements_pair_time,priority:2"`
	UserID        *uuid.UUID           `gorm:"column:user_id;type:uuid"`
	Type          enums.MovementType   `gorm:"column:type;type:movement_type_enum;not null"`
	Quantity      decimal.Decimal      `gorm:"column:quantity;type:numeric(12,2);not null"`
	StockAfter    decimal.Decimal      `gorm:"column:stock_after;type:numeric(12,2);not null"`
	ReferenceKind *enums.ReferenceKind `gorm:"column:reference_kind;type:reference_kind_enum"`
	ReferenceID   *uuid.UUID           `gorm:"column:reference_id;type:uuid"`
	Notes         *string              `gorm:"column:notes"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime;index:idx_stock_movements_pair_time,priority:3"`
}

// SignedDelta returns the movement's effect on the balance: positive for
// entries, negative for exits. Adjustments have no fixed sign; callers must
// compare stock_after snapshots instead.
func (m StockMovement) SignedDelta() decimal.Decimal {
	switch m.Type {
	case enums.MovementTypeEntry:
		return m.Quantity
	case enums.MovementTypeExit:
		return m.Quantity.Neg()
	default:
		return decimal.Zero
	}
}
