package models

import (
	"time"

	"github.com/google/uuid"
)

// Ticket is a support case. It only appears here as a movement reference
// target; its own workflow is managed elsewhere.
type Ticket struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BranchID  uuid.UUID `gorm:"column:branch_id;type:uuid;not null;index"`
	Subject   string    `gorm:"column:subject;not null"`
	Status    string    `gorm:"column:status;not null;default:'open'"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
