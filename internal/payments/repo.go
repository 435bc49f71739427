package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VendorOrderGross is one vendor's gross sales on one settled order.
type VendorOrderGross struct {
	VendorID         uuid.UUID       `gorm:"column:vendor_id"`
	OrderID          uuid.UUID       `gorm:"column:order_id"`
	Gross            decimal.Decimal `gorm:"column:gross"`
	DeliveredAt      *time.Time      `gorm:"column:delivered_at"`
	EarningsPostedAt *time.Time      `gorm:"column:earnings_posted_at"`
}

// VendorOrderEarning is the posted wallet credit for one vendor on one order.
type VendorOrderEarning struct {
	VendorID uuid.UUID       `gorm:"column:vendor_id"`
	OrderID  uuid.UUID       `gorm:"column:order_id"`
	Earned   decimal.Decimal `gorm:"column:earned"`
}

// VendorPendingPayout is the open payout exposure per vendor.
type VendorPendingPayout struct {
	VendorID uuid.UUID       `gorm:"column:vendor_id"`
	Pending  decimal.Decimal `gorm:"column:pending"`
}

// Repository aggregates settled-order figures for the payments overview.
type Repository interface {
	SettledGross(ctx context.Context, from, to time.Time) ([]VendorOrderGross, error)
	PostedEarnings(ctx context.Context, from, to time.Time) ([]VendorOrderEarning, error)
	PendingPayouts(ctx context.Context) ([]VendorPendingPayout, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payments repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SettledGross(ctx context.Context, from, to time.Time) ([]VendorOrderGross, error) {
	var rows []VendorOrderGross
	err := r.db.WithContext(ctx).Raw(`
SELECT oi.vendor_id,
       oi.order_id,
       SUM(oi.quantity * oi.unit_price) AS gross,
       o.delivered_at,
       o.earnings_posted_at
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
WHERE o.status = 'delivered'
  AND o.payment_status = 'paid'
  AND o.delivered_at >= ?
  AND o.delivered_at < ?
GROUP BY oi.vendor_id, oi.order_id, o.delivered_at, o.earnings_posted_at`,
		from, to).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) PostedEarnings(ctx context.Context, from, to time.Time) ([]VendorOrderEarning, error) {
	var rows []VendorOrderEarning
	err := r.db.WithContext(ctx).Raw(`
SELECT we.vendor_id,
       we.order_id,
       SUM(we.amount) AS earned
FROM wallet_entries we
JOIN orders o ON o.id = we.order_id
WHERE we.direction = 'credit'
  AND o.status = 'delivered'
  AND o.payment_status = 'paid'
  AND o.delivered_at >= ?
  AND o.delivered_at < ?
GROUP BY we.vendor_id, we.order_id`,
		from, to).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) PendingPayouts(ctx context.Context) ([]VendorPendingPayout, error) {
	var rows []VendorPendingPayout
	err := r.db.WithContext(ctx).Raw(`
SELECT vendor_id,
       SUM(requested_amount) AS pending
FROM payout_requests
WHERE status = 'pending'
GROUP BY vendor_id`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
