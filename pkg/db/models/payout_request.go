package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/prajwalbasnet/kinbech-backend/pkg/enums"
)

// PayoutRequest is a vendor-initiated withdrawal pending an admin decision.
// A partial unique index on (vendor_id) where status = 'pending' keeps at
// most one open request per vendor.
type PayoutRequest struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID        uuid.UUID          `gorm:"column:vendor_id;type:uuid;not null;index"`
	RequestedAmount decimal.Decimal    `gorm:"column:requested_amount;type:numeric(12,2);not null"`
	Message         *string            `gorm:"column:message"`
	AdminResponse   *string            `gorm:"column:admin_response"`
	Status          enums.PayoutStatus `gorm:"column:status;type:payout_status;not null;default:'pending'"`
	DecidedAt       *time.Time         `gorm:"column:decided_at"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
