package invoices

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prajwalbasnet/kinbech-backend/pkg/db/models"
	"github.com/prajwalbasnet/kinbech-backend/pkg/enums"
	"github.com/prajwalbasnet/kinbech-backend/pkg/logger"
)

// Service keeps invoice payment status in step with the owning order.
type Service interface {
	WithTx(tx *gorm.DB) Service
	SyncPaymentStatus(ctx context.Context, orderID uuid.UUID, paymentStatus enums.PaymentStatus) (int64, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Invoice, error)
}

type service struct {
	repo   Repository
	logger *logger.Logger
}

// NewService wires an invoice service with the provided repository.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invoice repository required")
	}
	return &service{repo: repo, logger: logg}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx), logger: s.logger}
}

// SyncPaymentStatus maps the order's payment status onto every invoice of the
// order and returns how many rows changed. An order without invoices is valid;
// the caller decides whether that is worth logging.
func (s *service) SyncPaymentStatus(ctx context.Context, orderID uuid.UUID, paymentStatus enums.PaymentStatus) (int64, error) {
	if orderID == uuid.Nil {
		return 0, fmt.Errorf("order id is required")
	}
	if !paymentStatus.IsValid() {
		return 0, fmt.Errorf("invalid payment status %q", paymentStatus)
	}

	target, err := enums.InvoiceStatusForPayment(paymentStatus)
	if err != nil {
		return 0, err
	}
	updated, err := s.repo.UpdatePaymentStatusByOrder(ctx, orderID, target)
	if err != nil {
		return 0, fmt.Errorf("syncing invoices: %w", err)
	}
	if updated == 0 && s.logger != nil {
		s.logger.Debug(ctx, "order has no invoices to sync")
	}
	return updated, nil
}

func (s *service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Invoice, error) {
	if orderID == uuid.Nil {
		return nil, fmt.Errorf("order id is required")
	}
	return s.repo.ListByOrderID(ctx, orderID)
}
