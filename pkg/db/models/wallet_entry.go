package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/prajwalbasnet/kinbech-backend/pkg/enums"
)

// WalletEntry is the immutable audit record behind every balance change.
// The unique idempotency key is what makes earnings posting and payout
// debits safe to retry.
type WalletEntry struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID        uuid.UUID             `gorm:"column:vendor_id;type:uuid;not null;index"`
	OrderID         *uuid.UUID            `gorm:"column:order_id;type:uuid"`
	PayoutRequestID *uuid.UUID            `gorm:"column:payout_request_id;type:uuid"`
	Direction       enums.WalletDirection `gorm:"column:direction;type:wallet_direction;not null"`
	Amount          decimal.Decimal       `gorm:"column:amount;type:numeric(12,2);not null"`
	IdempotencyKey  string                `gorm:"column:idempotency_key;not null;uniqueIndex"`
	Note            *string               `gorm:"column:note"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
}
