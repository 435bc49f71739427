package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VendorCommission is one time-effective rate record for a vendor. The
// applicable record is the most recent active one whose effective_from is at
// or before the evaluation time.
type VendorCommission struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID      uuid.UUID       `gorm:"column:vendor_id;type:uuid;not null;index"`
	Rate          decimal.Decimal `gorm:"column:rate;type:numeric(5,4);not null"`
	EffectiveFrom *time.Time      `gorm:"column:effective_from"`
	Active        bool            `gorm:"column:active;not null;default:true"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
