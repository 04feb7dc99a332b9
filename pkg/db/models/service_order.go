package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rmoralesp/fieldstock-backend/pkg/enums"
)

// ServiceOrder is a field job (installation, repair). Assigning material to
// it consumes stock; returning unused material restores it.
type ServiceOrder struct {
	ID            uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BranchID      uuid.UUID                `gorm:"column:branch_id;type:uuid;not null;index"`
	ClientName    string                   `gorm:"column:client_name;not null"`
	Status        enums.ServiceOrderStatus `gorm:"column:status;type:service_order_status_enum;not null;default:'scheduled'"`
	ScheduledDate *time.Time               `gorm:"column:scheduled_date"`
	CreatedAt     time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                `gorm:"column:updated_at;autoUpdateTime"`

	Items []ServiceOrderItem `gorm:"foreignKey:ServiceOrderID"`
}
