package invoices

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prajwalbasnet/kinbech-backend/pkg/db/models"
	"github.com/prajwalbasnet/kinbech-backend/pkg/enums"
)

// Repository manages persistence for per-vendor invoices.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	UpdatePaymentStatusByOrder(ctx context.Context, orderID uuid.UUID, status enums.InvoiceStatus) (int64, error)
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Invoice, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an invoice repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) UpdatePaymentStatusByOrder(ctx context.Context, orderID uuid.UUID, status enums.InvoiceStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("order_id = ?", orderID).
		Update("payment_status", status)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Invoice, error) {
	var invoices []models.Invoice
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}
