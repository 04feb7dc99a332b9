package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServiceOrderItem is material assigned to a service order. Returned marks
// material that went back to the shelf; the stock effect of both directions
// lives in the movement ledger.
type ServiceOrderItem struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ServiceOrderID uuid.UUID       `gorm:"column:service_order_id;type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Quantity       decimal.Decimal `gorm:"column:quantity;type:numeric(12,2);not null"`
	Returned       bool            `gorm:"column:returned;not null;default:false"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
