package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/prajwalbasnet/kinbech-backend/pkg/db"
	"github.com/prajwalbasnet/kinbech-backend/pkg/db/models"
	"github.com/prajwalbasnet/kinbech-backend/pkg/enums"
	apperrors "github.com/prajwalbasnet/kinbech-backend/pkg/errors"
	"github.com/prajwalbasnet/kinbech-backend/pkg/metrics"
	"github.com/prajwalbasnet/kinbech-backend/pkg/money"
	"github.com/prajwalbasnet/kinbech-backend/pkg/pagination"
)

// ErrDuplicateEntry signals that an idempotency key has already been applied.
// Callers treat it as "this movement already happened" and carry on.
var ErrDuplicateEntry = errors.New("wallet entry already applied")

// Service defines the balance-moving operations on vendor wallets. Every
// movement writes a ledger entry first; the unique idempotency key makes
// retried movements collapse into ErrDuplicateEntry.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Credit(ctx context.Context, input MovementInput) (*models.WalletEntry, error)
	Debit(ctx context.Context, input MovementInput) (*models.WalletEntry, error)
	Wallet(ctx context.Context, vendorID uuid.UUID) (*models.VendorWallet, error)
	Entries(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*EntryPage, error)
}

// MovementInput captures one credit or debit against a vendor wallet.
type MovementInput struct {
	VendorID        uuid.UUID
	Amount          decimal.Decimal
	IdempotencyKey  string
	OrderID         *uuid.UUID
	PayoutRequestID *uuid.UUID
	Note            *string
}

// EntryPage is one cursor page of wallet entries.
type EntryPage struct {
	Entries    []models.WalletEntry `json:"entries"`
	NextCursor string               `json:"next_cursor,omitempty"`
}

type service struct {
	repo    Repository
	metrics *metrics.LedgerMetrics
}

// NewService wires a wallet service with the provided repository.
func NewService(repo Repository, ledgerMetrics *metrics.LedgerMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	return &service{repo: repo, metrics: ledgerMetrics}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx), metrics: s.metrics}
}

func (s *service) Credit(ctx context.Context, input MovementInput) (*models.WalletEntry, error) {
	if err := validateMovement(input); err != nil {
		return nil, err
	}

	if err := s.repo.EnsureWallet(ctx, input.VendorID); err != nil {
		return nil, fmt.Errorf("ensuring wallet: %w", err)
	}

	entry, err := s.writeEntry(ctx, input, enums.WalletDirectionCredit)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddBalance(ctx, input.VendorID, entry.Amount); err != nil {
		return nil, fmt.Errorf("crediting wallet: %w", err)
	}

	s.metrics.IncWalletEntry(string(enums.WalletDirectionCredit))
	return entry, nil
}

func (s *service) Debit(ctx context.Context, input MovementInput) (*models.WalletEntry, error) {
	if err := validateMovement(input); err != nil {
		return nil, err
	}

	if err := s.repo.EnsureWallet(ctx, input.VendorID); err != nil {
		return nil, fmt.Errorf("ensuring wallet: %w", err)
	}

	entry, err := s.writeEntry(ctx, input, enums.WalletDirectionDebit)
	if err != nil {
		return nil, err
	}

	covered, err := s.repo.SubtractBalance(ctx, input.VendorID, entry.Amount)
	if err != nil {
		return nil, fmt.Errorf("debiting wallet: %w", err)
	}
	if !covered {
		return nil, apperrors.New(apperrors.CodeInsufficientFunds, "wallet balance does not cover the requested amount")
	}

	s.metrics.IncWalletEntry(string(enums.WalletDirectionDebit))
	return entry, nil
}

func (s *service) Wallet(ctx context.Context, vendorID uuid.UUID) (*models.VendorWallet, error) {
	if vendorID == uuid.Nil {
		return nil, fmt.Errorf("vendor id is required")
	}
	if err := s.repo.EnsureWallet(ctx, vendorID); err != nil {
		return nil, fmt.Errorf("ensuring wallet: %w", err)
	}
	return s.repo.FindWallet(ctx, vendorID)
}

func (s *service) Entries(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*EntryPage, error) {
	if vendorID == uuid.Nil {
		return nil, fmt.Errorf("vendor id is required")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	entries, err := s.repo.ListEntries(ctx, vendorID, cursor, limit+1)
	if err != nil {
		return nil, err
	}

	page := &EntryPage{Entries: entries}
	if len(entries) > limit {
		page.Entries = entries[:limit]
		last := page.Entries[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func (s *service) writeEntry(ctx context.Context, input MovementInput, direction enums.WalletDirection) (*models.WalletEntry, error) {
	entry := &models.WalletEntry{
		ID:              uuid.New(),
		VendorID:        input.VendorID,
		OrderID:         input.OrderID,
		PayoutRequestID: input.PayoutRequestID,
		Direction:       direction,
		Amount:          money.Round2(input.Amount),
		IdempotencyKey:  input.IdempotencyKey,
		Note:            input.Note,
	}
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		if db.IsUniqueViolation(err, "idempotency_key") {
			return nil, ErrDuplicateEntry
		}
		return nil, fmt.Errorf("writing wallet entry: %w", err)
	}
	return entry, nil
}

func validateMovement(input MovementInput) error {
	if input.VendorID == uuid.Nil {
		return fmt.Errorf("vendor id is required")
	}
	if !input.Amount.IsPositive() {
		return apperrors.New(apperrors.CodeValidation, "movement amount must be positive")
	}
	if strings.TrimSpace(input.IdempotencyKey) == "" {
		return fmt.Errorf("idempotency key is required")
	}
	return nil
}
