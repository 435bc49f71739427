package payouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/prajwalbasnet/kinbech-backend/internal/wallet"
	"github.com/prajwalbasnet/kinbech-backend/pkg/db"
	"github.com/prajwalbasnet/kinbech-backend/pkg/db/models"
	"github.com/prajwalbasnet/kinbech-backend/pkg/enums"
	apperrors "github.com/prajwalbasnet/kinbech-backend/pkg/errors"
	"github.com/prajwalbasnet/kinbech-backend/pkg/metrics"
	"github.com/prajwalbasnet/kinbech-backend/pkg/money"
	"github.com/prajwalbasnet/kinbech-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service handles the vendor payout lifecycle: submission and admin decision.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.PayoutRequest, error)
	Decide(ctx context.Context, input DecideInput) (*models.PayoutRequest, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*RequestPage, error)
	ListPending(ctx context.Context, params pagination.Params) (*RequestPage, error)
}

// SubmitInput is a vendor's withdrawal request.
type SubmitInput struct {
	VendorID uuid.UUID
	Amount   decimal.Decimal
	Message  *string
}

// DecideInput is the admin's verdict on a pending request.
type DecideInput struct {
	RequestID uuid.UUID
	Decision  string
	AdminNote *string
}

// RequestPage is one cursor page of payout requests.
type RequestPage struct {
	Requests   []models.PayoutRequest `json:"requests"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}

type service struct {
	repo    Repository
	wallet  wallet.Service
	tx      txRunner
	metrics *metrics.LedgerMetrics
}

// NewService wires a payouts service with its collaborators.
func NewService(repo Repository, walletSvc wallet.Service, tx txRunner, ledgerMetrics *metrics.LedgerMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payouts repository required")
	}
	if walletSvc == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, wallet: walletSvc, tx: tx, metrics: ledgerMetrics}, nil
}

// Submit validates the amount against the current balance and opens a pending
// request. The balance check here is advisory; the binding check happens again
// at decision time. The partial unique index on pending requests backstops the
// one-pending-request rule under concurrent submissions.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.PayoutRequest, error) {
	if input.VendorID == uuid.Nil {
		return nil, fmt.Errorf("vendor id is required")
	}
	if !input.Amount.IsPositive() {
		return nil, apperrors.New(apperrors.CodeValidation, "payout amount must be positive")
	}

	var request *models.PayoutRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		walletSvc := s.wallet.WithTx(tx)

		w, err := walletSvc.Wallet(ctx, input.VendorID)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeDependency, err, "load wallet")
		}
		if input.Amount.GreaterThan(w.Balance) {
			return apperrors.New(apperrors.CodeValidation,
				fmt.Sprintf("requested amount exceeds wallet balance %s", w.Balance.StringFixed(2)))
		}

		pending, err := repo.HasPending(ctx, input.VendorID)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeDependency, err, "check pending requests")
		}
		if pending {
			return apperrors.New(apperrors.CodeConflict, "a payout request is already pending for this vendor")
		}

		request = &models.PayoutRequest{
			ID:              uuid.New(),
			VendorID:        input.VendorID,
			RequestedAmount: money.Round2(input.Amount),
			Message:         input.Message,
			Status:          enums.PayoutStatusPending,
		}
		if err := repo.Create(ctx, request); err != nil {
			if db.IsUniqueViolation(err, "payout_requests_vendor_pending_idx") {
				return apperrors.New(apperrors.CodeConflict, "a payout request is already pending for this vendor")
			}
			return apperrors.Wrap(apperrors.CodeDependency, err, "create payout request")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Decide settles a pending request. Approval debits the wallet in the same
// transaction; an insufficient balance aborts and the request stays pending.
func (s *service) Decide(ctx context.Context, input DecideInput) (*models.PayoutRequest, error) {
	if input.RequestID == uuid.Nil {
		return nil, fmt.Errorf("request id is required")
	}
	decision, err := enums.ParsePayoutStatus(input.Decision)
	if err != nil || decision == enums.PayoutStatusPending {
		return nil, apperrors.New(apperrors.CodeValidation,
			fmt.Sprintf("decision must be %q or %q", enums.PayoutStatusPaid, enums.PayoutStatusRejected))
	}

	var request *models.PayoutRequest
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loaded, err := repo.FindByID(ctx, input.RequestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "payout request not found")
			}
			return apperrors.Wrap(apperrors.CodeDependency, err, "load payout request")
		}
		if loaded.Status != enums.PayoutStatusPending {
			return apperrors.New(apperrors.CodeStateConflict,
				fmt.Sprintf("payout request already %s", loaded.Status))
		}

		if decision == enums.PayoutStatusPaid {
			note := fmt.Sprintf("payout for request %s", loaded.ID)
			_, err := s.wallet.WithTx(tx).Debit(ctx, wallet.MovementInput{
				VendorID:        loaded.VendorID,
				Amount:          loaded.RequestedAmount,
				IdempotencyKey:  DebitKey(loaded.ID),
				PayoutRequestID: &loaded.ID,
				Note:            &note,
			})
			if err != nil && !errors.Is(err, wallet.ErrDuplicateEntry) {
				return err
			}
		}

		now := time.Now().UTC()
		loaded.Status = decision
		loaded.AdminResponse = input.AdminNote
		loaded.DecidedAt = &now
		if err := repo.Save(ctx, loaded); err != nil {
			return apperrors.Wrap(apperrors.CodeDependency, err, "save payout request")
		}

		request = loaded
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.metrics.IncPayoutDecision(string(decision))
	return request, nil
}

func (s *service) ListByVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*RequestPage, error) {
	if vendorID == uuid.Nil {
		return nil, fmt.Errorf("vendor id is required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	requests, err := s.repo.ListByVendor(ctx, vendorID, cursor, limit+1)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "list payout requests")
	}
	return buildPage(requests, limit), nil
}

func (s *service) ListPending(ctx context.Context, params pagination.Params) (*RequestPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	requests, err := s.repo.ListPending(ctx, cursor, limit+1)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "list pending payout requests")
	}
	return buildPage(requests, limit), nil
}

// DebitKey is the idempotency key for the wallet debit of one payout request.
func DebitKey(requestID uuid.UUID) string {
	return fmt.Sprintf("payout:%s", requestID)
}

func buildPage(requests []models.PayoutRequest, limit int) *RequestPage {
	page := &RequestPage{Requests: requests}
	if len(requests) > limit {
		page.Requests = requests[:limit]
		last := page.Requests[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page
}
