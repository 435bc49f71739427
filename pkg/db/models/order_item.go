package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/prajwalbasnet/kinbech-backend/pkg/money"
)

// OrderItem snapshots one sold line. Product and variant names, image, unit
// price, and shipping cost are copied at order time so the line survives
// later product edits or deletion.
type OrderItem struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID  `gorm:"column:order_id;type:uuid;not null"`
	VendorID  uuid.UUID  `gorm:"column:vendor_id;type:uuid;not null"`
	ProductID *uuid.UUID `gorm:"column:product_id;type:uuid"`
	VariantID *uuid.UUID `gorm:"column:variant_id;type:uuid"`

	ProductName  string  `gorm:"column:product_name;not null"`
	ProductImage *string `gorm:"column:product_image"`
	VariantName  *string `gorm:"column:variant_name"`

	Quantity      int             `gorm:"column:quantity;not null"`
	UnitPrice     decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	ShippingCost  decimal.Decimal `gorm:"column:shipping_cost;type:numeric(12,2);not null;default:0"`
	EstimatedDays *string         `gorm:"column:estimated_days"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// LineTotal derives quantity times unit price; it is never stored.
func (i OrderItem) LineTotal() decimal.Decimal {
	return money.LineTotal(i.UnitPrice, i.Quantity)
}

// ShippingTotal derives quantity times per-unit shipping cost.
func (i OrderItem) ShippingTotal() decimal.Decimal {
	return money.LineTotal(i.ShippingCost, i.Quantity)
}
