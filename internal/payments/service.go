package payments

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/prajwalbasnet/kinbech-backend/internal/commission"
	"github.com/prajwalbasnet/kinbech-backend/internal/wallet"
	apperrors "github.com/prajwalbasnet/kinbech-backend/pkg/errors"
	"github.com/prajwalbasnet/kinbech-backend/pkg/money"
)

// VendorPaymentsRow is one vendor's line in the payments overview.
type VendorPaymentsRow struct {
	VendorID        uuid.UUID       `json:"vendor_id"`
	GrossSales      decimal.Decimal `json:"gross_sales"`
	AdminCommission decimal.Decimal `json:"admin_commission"`
	VendorEarning   decimal.Decimal `json:"vendor_earning"`
	WalletBalance   decimal.Decimal `json:"wallet_balance"`
	PendingPayout   decimal.Decimal `json:"pending_payout"`
}

// Service assembles the admin payments overview.
type Service interface {
	Overview(ctx context.Context, from, to time.Time) ([]VendorPaymentsRow, error)
}

type service struct {
	repo       Repository
	wallet     wallet.Service
	commission commission.Service
}

// NewService wires a payments service with its collaborators.
func NewService(repo Repository, walletSvc wallet.Service, commissionSvc commission.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if walletSvc == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if commissionSvc == nil {
		return nil, fmt.Errorf("commission service required")
	}
	return &service{repo: repo, wallet: walletSvc, commission: commissionSvc}, nil
}

// Overview sums settled orders per vendor in [from, to). Earnings come from
// the posted wallet entries when available; orders settled but not yet posted
// are recomputed with the rate effective at delivery time.
func (s *service) Overview(ctx context.Context, from, to time.Time) ([]VendorPaymentsRow, error) {
	if !to.After(from) {
		return nil, apperrors.New(apperrors.CodeValidation, "date range end must be after start")
	}

	grossRows, err := s.repo.SettledGross(ctx, from, to)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "aggregate gross sales")
	}
	earningRows, err := s.repo.PostedEarnings(ctx, from, to)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "aggregate posted earnings")
	}
	pendingRows, err := s.repo.PendingPayouts(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "aggregate pending payouts")
	}

	type orderKey struct {
		vendorID uuid.UUID
		orderID  uuid.UUID
	}
	posted := make(map[orderKey]decimal.Decimal, len(earningRows))
	for _, row := range earningRows {
		posted[orderKey{row.VendorID, row.OrderID}] = row.Earned
	}
	pending := make(map[uuid.UUID]decimal.Decimal, len(pendingRows))
	for _, row := range pendingRows {
		pending[row.VendorID] = row.Pending
	}

	byVendor := make(map[uuid.UUID]*VendorPaymentsRow)
	for _, row := range grossRows {
		vendorRow, ok := byVendor[row.VendorID]
		if !ok {
			vendorRow = &VendorPaymentsRow{VendorID: row.VendorID}
			byVendor[row.VendorID] = vendorRow
		}

		earning, ok := posted[orderKey{row.VendorID, row.OrderID}]
		if !ok {
			at := from
			if row.DeliveredAt != nil {
				at = *row.DeliveredAt
			}
			rate, err := s.commission.Resolve(ctx, row.VendorID, at)
			if err != nil {
				return nil, err
			}
			_, earning, err = money.Split(row.Gross, rate)
			if err != nil {
				return nil, fmt.Errorf("recomputing earnings for vendor %s: %w", row.VendorID, err)
			}
		}

		vendorRow.GrossSales = vendorRow.GrossSales.Add(row.Gross)
		vendorRow.VendorEarning = vendorRow.VendorEarning.Add(earning)
		vendorRow.AdminCommission = vendorRow.AdminCommission.Add(row.Gross.Sub(earning))
	}

	rows := make([]VendorPaymentsRow, 0, len(byVendor))
	for vendorID, vendorRow := range byVendor {
		w, err := s.wallet.Wallet(ctx, vendorID)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeDependency, err, "load wallet balance")
		}
		vendorRow.WalletBalance = w.Balance
		vendorRow.PendingPayout = pending[vendorID]
		rows = append(rows, *vendorRow)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].VendorID.String() < rows[j].VendorID.String()
	})
	return rows, nil
}
