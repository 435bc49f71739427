package commission

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prajwalbasnet/kinbech-backend/pkg/db/models"
)

// Repository looks up vendor commission rate records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.VendorCommission) error
	FindApplicable(ctx context.Context, vendorID uuid.UUID, at time.Time) (*models.VendorCommission, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.VendorCommission, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a commission repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.VendorCommission) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(record).Error
}

// FindApplicable returns the most recent active record effective at the given
// time. Records without effective_from apply immediately; ties resolve to the
// newest record.
func (r *repository) FindApplicable(ctx context.Context, vendorID uuid.UUID, at time.Time) (*models.VendorCommission, error) {
	var record models.VendorCommission
	err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND active = ?", vendorID, true).
		Where("effective_from IS NULL OR effective_from <= ?", at).
		Order("effective_from DESC NULLS LAST").
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *repository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.VendorCommission, error) {
	var records []models.VendorCommission
	if err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
