package fieldops

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateInput carries the data required to schedule a service order.
type CreateInput struct {
	BranchID      uuid.UUID
	ClientName    string
	ScheduledDate *time.Time
}

// AssignInput assigns material from the order's branch to the job.
type AssignInput struct {
	ServiceOrderID uuid.UUID
	ProductID      uuid.UUID
	Quantity       decimal.Decimal
	UserID         *uuid.UUID
}

// ReturnInput sends previously assigned material back to the shelf.
type ReturnInput struct {
	ItemID uuid.UUID
	UserID *uuid.UUID
}
