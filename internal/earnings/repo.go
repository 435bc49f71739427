package earnings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prajwalbasnet/kinbech-backend/pkg/db/models"
)

// Repository owns the posted-marker on orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ClaimPosting(ctx context.Context, orderID uuid.UUID, at time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an earnings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// ClaimPosting stamps earnings_posted_at exactly once. The IS NULL guard makes
// concurrent posting attempts race safely; only the winner proceeds to credit
// wallets.
func (r *repository) ClaimPosting(ctx context.Context, orderID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND earnings_posted_at IS NULL", orderID).
		Update("earnings_posted_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
