package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/prajwalbasnet/kinbech-backend/pkg/enums"
)

// Invoice is the per-vendor billing record issued at checkout. Totals are a
// snapshot from invoice-creation time; only payment_status is kept in sync
// with the owning order afterwards.
type Invoice struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	VendorID      uuid.UUID           `gorm:"column:vendor_id;type:uuid;not null;index"`
	InvoiceNumber string              `gorm:"column:invoice_number;not null;uniqueIndex"`
	Subtotal      decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Tax           decimal.Decimal     `gorm:"column:tax;type:numeric(12,2);not null;default:0"`
	Discount      decimal.Decimal     `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	Total         decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	PaymentStatus enums.InvoiceStatus `gorm:"column:payment_status;type:invoice_status;not null;default:'pending'"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
