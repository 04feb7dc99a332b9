package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderItem is one product line on a purchase order.
type PurchaseOrderItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PurchaseOrderID uuid.UUID       `gorm:"column:purchase_order_id;type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Quantity        decimal.Decimal `gorm:"column:quantity;type:numeric(12,2);not null"`
	UnitCost        decimal.Decimal `gorm:"column:unit_cost;type:numeric(12,2);not null;default:0"`
}
