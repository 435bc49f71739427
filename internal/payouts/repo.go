package payouts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prajwalbasnet/kinbech-backend/pkg/db/models"
	"github.com/prajwalbasnet/kinbech-backend/pkg/enums"
	"github.com/prajwalbasnet/kinbech-backend/pkg/pagination"
)

// Repository manages persistence for payout requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.PayoutRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PayoutRequest, error)
	HasPending(ctx context.Context, vendorID uuid.UUID) (bool, error)
	Save(ctx context.Context, request *models.PayoutRequest) error
	ListByVendor(ctx context.Context, vendorID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.PayoutRequest, error)
	ListPending(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.PayoutRequest, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payouts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.PayoutRequest) error {
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PayoutRequest, error) {
	var request models.PayoutRequest
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) HasPending(ctx context.Context, vendorID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PayoutRequest{}).
		Where("vendor_id = ? AND status = ?", vendorID, enums.PayoutStatusPending).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) Save(ctx context.Context, request *models.PayoutRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

func (r *repository) ListByVendor(ctx context.Context, vendorID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.PayoutRequest, error) {
	query := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var requests []models.PayoutRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repository) ListPending(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.PayoutRequest, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", enums.PayoutStatusPending).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var requests []models.PayoutRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}
