package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/prajwalbasnet/kinbech-backend/pkg/enums"
)

// Order is the checkout-produced header an admin or vendor drives through
// the fulfillment lifecycle. Monetary fields are derived from the line items
// by the totals recompute step and never hand-edited.
type Order struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber string     `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerID  *uuid.UUID `gorm:"column:customer_id;type:uuid"`

	// Shipping snapshot captured at checkout.
	FullName   string  `gorm:"column:full_name;not null"`
	Phone      string  `gorm:"column:phone;not null"`
	Email      string  `gorm:"column:email;not null"`
	Address    string  `gorm:"column:address;not null"`
	City       string  `gorm:"column:city;not null"`
	Region     string  `gorm:"column:region;not null"`
	PostalCode *string `gorm:"column:postal_code"`

	Subtotal      decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	ShippingTotal decimal.Decimal `gorm:"column:shipping_total;type:numeric(12,2);not null;default:0"`
	Tax           decimal.Decimal `gorm:"column:tax;type:numeric(12,2);not null;default:0"`
	Discount      decimal.Decimal `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	Total         decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`

	Status        enums.OrderStatus   `gorm:"column:status;type:order_status;not null;default:'pending'"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:payment_status;not null;default:'unpaid'"`
	TransactionID *string             `gorm:"column:transaction_id"`

	Notes      *string `gorm:"column:notes"`
	AdminNotes *string `gorm:"column:admin_notes"`

	EarningsPostedAt *time.Time `gorm:"column:earnings_posted_at"`
	DeliveredAt      *time.Time `gorm:"column:delivered_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
