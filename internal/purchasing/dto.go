package purchasing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmoralesp/fieldstock-backend/pkg/enums"
)

// ItemInput is one product line on a new purchase order.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
}

// CreateInput carries the data required to open a purchase order.
type CreateInput struct {
	BranchID   uuid.UUID
	SupplierID uuid.UUID
	Notes      *string
	Items      []ItemInput
}

// UpdateStatusInput moves a purchase order through its lifecycle.
type UpdateStatusInput struct {
	OrderID uuid.UUID
	Status  enums.PurchaseOrderStatus
	UserID  *uuid.UUID
}
