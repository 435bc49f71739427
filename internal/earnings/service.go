package earnings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/prajwalbasnet/kinbech-backend/internal/commission"
	"github.com/prajwalbasnet/kinbech-backend/internal/wallet"
	"github.com/prajwalbasnet/kinbech-backend/pkg/db/models"
	"github.com/prajwalbasnet/kinbech-backend/pkg/enums"
	"github.com/prajwalbasnet/kinbech-backend/pkg/logger"
	"github.com/prajwalbasnet/kinbech-backend/pkg/metrics"
	"github.com/prajwalbasnet/kinbech-backend/pkg/money"
)

// Service posts vendor earnings for delivered, paid orders.
type Service interface {
	WithTx(tx *gorm.DB) Service
	PostOrder(ctx context.Context, order *models.Order) (bool, error)
}

type service struct {
	repo       Repository
	commission commission.Service
	wallet     wallet.Service
	metrics    *metrics.LedgerMetrics
	logger     *logger.Logger
}

// NewService wires the posting engine with its collaborators.
func NewService(
	repo Repository,
	commissionSvc commission.Service,
	walletSvc wallet.Service,
	ledgerMetrics *metrics.LedgerMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("earnings repository required")
	}
	if commissionSvc == nil {
		return nil, fmt.Errorf("commission service required")
	}
	if walletSvc == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	return &service{
		repo:       repo,
		commission: commissionSvc,
		wallet:     walletSvc,
		metrics:    ledgerMetrics,
		logger:     logg,
	}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{
		repo:       s.repo.WithTx(tx),
		commission: s.commission.WithTx(tx),
		wallet:     s.wallet.WithTx(tx),
		metrics:    s.metrics,
		logger:     s.logger,
	}
}

// PostOrder credits each vendor's wallet with their commission-adjusted share
// of the order. It returns true only when this call performed the posting;
// orders that are not (delivered, paid) or were already posted are a no-op.
// Must run inside the same transaction as the status transition.
func (s *service) PostOrder(ctx context.Context, order *models.Order) (bool, error) {
	if order == nil || order.ID == uuid.Nil {
		return false, fmt.Errorf("order is required")
	}
	if order.Status != enums.OrderStatusDelivered || order.PaymentStatus != enums.PaymentStatusPaid {
		return false, nil
	}
	if order.EarningsPostedAt != nil {
		s.metrics.IncEarningsPosted("already_posted")
		return false, nil
	}

	at := time.Now().UTC()
	if order.DeliveredAt != nil {
		at = *order.DeliveredAt
	}

	claimed, err := s.repo.ClaimPosting(ctx, order.ID, at)
	if err != nil {
		return false, fmt.Errorf("claiming earnings posting: %w", err)
	}
	if !claimed {
		s.metrics.IncEarningsPosted("already_posted")
		return false, nil
	}

	for _, share := range groupByVendor(order.Items) {
		rate, err := s.commission.Resolve(ctx, share.vendorID, at)
		if err != nil {
			return false, err
		}
		commissionAmt, earning, err := money.Split(share.gross, rate)
		if err != nil {
			return false, fmt.Errorf("splitting earnings for vendor %s: %w", share.vendorID, err)
		}
		if !earning.IsPositive() {
			continue
		}

		note := fmt.Sprintf("earnings for order %s (commission %s)", order.OrderNumber, commissionAmt.StringFixed(2))
		_, err = s.wallet.Credit(ctx, wallet.MovementInput{
			VendorID:       share.vendorID,
			Amount:         earning,
			IdempotencyKey: PostingKey(order.ID, share.vendorID),
			OrderID:        &order.ID,
			Note:           &note,
		})
		if errors.Is(err, wallet.ErrDuplicateEntry) {
			if s.logger != nil {
				s.logger.Warn(ctx, "earnings entry already exists, skipping credit")
			}
			continue
		}
		if err != nil {
			return false, err
		}
	}

	order.EarningsPostedAt = &at
	s.metrics.IncEarningsPosted("posted")
	return true, nil
}

// PostingKey is the idempotency key for one vendor's earnings on one order.
func PostingKey(orderID, vendorID uuid.UUID) string {
	return fmt.Sprintf("earnings:%s:%s", orderID, vendorID)
}

type vendorShare struct {
	vendorID uuid.UUID
	gross    decimal.Decimal
}

// groupByVendor sums line totals per vendor in a stable order.
func groupByVendor(items []models.OrderItem) []vendorShare {
	sums := make(map[uuid.UUID]decimal.Decimal, len(items))
	for _, item := range items {
		sums[item.VendorID] = sums[item.VendorID].Add(item.LineTotal())
	}

	shares := make([]vendorShare, 0, len(sums))
	for vendorID, gross := range sums {
		shares = append(shares, vendorShare{vendorID: vendorID, gross: gross})
	}
	sort.Slice(shares, func(i, j int) bool {
		return shares[i].vendorID.String() < shares[j].vendorID.String()
	})
	return shares
}
