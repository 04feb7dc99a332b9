package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rmoralesp/fieldstock-backend/pkg/enums"
)

// PurchaseOrder is an inbound goods document. Receiving it is the event that
// adds stock; the order itself carries no balance.
type PurchaseOrder struct {
	ID           uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BranchID     uuid.UUID                 `gorm:"column:branch_id;type:uuid;not null;index"`
	SupplierID   uuid.UUID                 `gorm:"column:supplier_id;type:uuid;not null"`
	Status       enums.PurchaseOrderStatus `gorm:"column:status;type:purchase_order_status_enum;not null;default:'draft'"`
	ReceivedDate *time.Time                `gorm:"column:received_date"`
	Notes        *string                   `gorm:"column:notes"`
	CreatedAt    time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                 `gorm:"column:updated_at;autoUpdateTime"`

	Items []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID"`
}
