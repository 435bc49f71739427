package commission

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/prajwalbasnet/kinbech-backend/pkg/config"
	"github.com/prajwalbasnet/kinbech-backend/pkg/db/models"
	apperrors "github.com/prajwalbasnet/kinbech-backend/pkg/errors"
)

// Service resolves the commission rate to charge a vendor at a point in time.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Resolve(ctx context.Context, vendorID uuid.UUID, at time.Time) (decimal.Decimal, error)
	SetRate(ctx context.Context, input SetRateInput) (*models.VendorCommission, error)
	History(ctx context.Context, vendorID uuid.UUID) ([]models.VendorCommission, error)
}

// SetRateInput captures a new commission rate record for a vendor.
type SetRateInput struct {
	VendorID      uuid.UUID
	Rate          decimal.Decimal
	EffectiveFrom *time.Time
}

type service struct {
	repo     Repository
	fallback decimal.Decimal
}

// NewService wires a commission service. The fallback rate applies to vendors
// with no commission record.
func NewService(repo Repository, cfg config.LedgerConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("commission repository required")
	}
	return &service{repo: repo, fallback: cfg.CommissionFallback()}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx), fallback: s.fallback}
}

func (s *service) Resolve(ctx context.Context, vendorID uuid.UUID, at time.Time) (decimal.Decimal, error) {
	if vendorID == uuid.Nil {
		return decimal.Zero, fmt.Errorf("vendor id is required")
	}

	record, err := s.repo.FindApplicable(ctx, vendorID, at)
	if err != nil {
		return decimal.Zero, fmt.Errorf("resolving commission: %w", err)
	}
	if record == nil {
		return s.fallback, nil
	}
	return record.Rate, nil
}

func (s *service) SetRate(ctx context.Context, input SetRateInput) (*models.VendorCommission, error) {
	if input.VendorID == uuid.Nil {
		return nil, fmt.Errorf("vendor id is required")
	}
	if input.Rate.IsNegative() || input.Rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, apperrors.New(apperrors.CodeValidation, "commission rate must be between 0 and 1")
	}

	record := &models.VendorCommission{
		ID:            uuid.New(),
		VendorID:      input.VendorID,
		Rate:          input.Rate,
		EffectiveFrom: input.EffectiveFrom,
		Active:        true,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("creating commission record: %w", err)
	}
	return record, nil
}

func (s *service) History(ctx context.Context, vendorID uuid.UUID) ([]models.VendorCommission, error) {
	if vendorID == uuid.Nil {
		return nil, fmt.Errorf("vendor id is required")
	}
	return s.repo.ListByVendor(ctx, vendorID)
}
