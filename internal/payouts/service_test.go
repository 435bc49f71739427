package payouts

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/prajwalbasnet/kinbech-backend/internal/wallet"
	"github.com/prajwalbasnet/kinbech-backend/pkg/db/models"
	"github.com/prajwalbasnet/kinbech-backend/pkg/enums"
	apperrors "github.com/prajwalbasnet/kinbech-backend/pkg/errors"
	"github.com/prajwalbasnet/kinbech-backend/pkg/pagination"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupPayoutsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS vendor_wallets (
  id TEXT PRIMARY KEY,
  vendor_id TEXT NOT NULL UNIQUE,
  balance NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS wallet_entries (
  id TEXT PRIMARY KEY,
  vendor_id TEXT NOT NULL,
  order_id TEXT,
  payout_request_id TEXT,
  direction TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  idempotency_key TEXT NOT NULL UNIQUE,
  note TEXT,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS payout_requests (
  id TEXT PRIMARY KEY,
  vendor_id TEXT NOT NULL,
  requested_amount NUMERIC NOT NULL,
  message TEXT,
  admin_response TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  decided_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS payout_requests_vendor_pending_idx
  ON payout_requests (vendor_id) WHERE status = 'pending';`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newPayoutsService(t *testing.T, db *gorm.DB) (Service, wallet.Service) {
	t.Helper()

	walletSvc, err := wallet.NewService(wallet.NewRepository(db), nil)
	require.NoError(t, err)

	svc, err := NewService(NewRepository(db), walletSvc, gormTxRunner{db: db}, nil)
	require.NoError(t, err)
	return svc, walletSvc
}

func fundWallet(t *testing.T, walletSvc wallet.Service, vendorID uuid.UUID, amount string) {
	t.Helper()
	_, err := walletSvc.Credit(context.Background(), wallet.MovementInput{
		VendorID:       vendorID,
		Amount:         decimal.RequireFromString(amount),
		IdempotencyKey: "earnings:seed:" + uuid.NewString(),
	})
	require.NoError(t, err)
}

func TestService_SubmitRejectsOverdraw(t *testing.T) {
	db := setupPayoutsTestDB(t)
	svc, walletSvc := newPayoutsService(t, db)
	ctx := context.Background()
	vendorID := uuid.New()

	fundWallet(t, walletSvc, vendorID, "900.00")

	_, err := svc.Submit(ctx, SubmitInput{
		VendorID: vendorID,
		Amount:   decimal.RequireFromString("1000.00"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	request, err := svc.Submit(ctx, SubmitInput{
		VendorID: vendorID,
		Amount:   decimal.RequireFromString("900.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.PayoutStatusPending, request.Status)
}

func TestService_SubmitAllowsOnlyOnePending(t *testing.T) {
	db := setupPayoutsTestDB(t)
	svc, walletSvc := newPayoutsService(t, db)
	ctx := context.Background()
	vendorID := uuid.New()

	fundWallet(t, walletSvc, vendorID, "500.00")

	_, err := svc.Submit(ctx, SubmitInput{
		VendorID: vendorID,
		Amount:   decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, SubmitInput{
		VendorID: vendorID,
		Amount:   decimal.RequireFromString("50.00"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
}

func TestService_SubmitRejectsNonPositiveAmounts(t *testing.T) {
	db := setupPayoutsTestDB(t)
	svc, _ := newPayoutsService(t, db)

	_, err := svc.Submit(context.Background(), SubmitInput{
		VendorID: uuid.New(),
		Amount:   decimal.Zero,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestService_DecidePaidDebitsWallet(t *testing.T) {
	db := setupPayoutsTestDB(t)
	svc, walletSvc := newPayoutsService(t, db)
	ctx := context.Background()
	vendorID := uuid.New()

	fundWallet(t, walletSvc, vendorID, "900.00")

	request, err := svc.Submit(ctx, SubmitInput{
		VendorID: vendorID,
		Amount:   decimal.RequireFromString("900.00"),
	})
	require.NoError(t, err)

	decided, err := svc.Decide(ctx, DecideInput{
		RequestID: request.ID,
		Decision:  "paid",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.PayoutStatusPaid, decided.Status)
	require.NotNil(t, decided.DecidedAt)

	w, err := walletSvc.Wallet(ctx, vendorID)
	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(decimal.Zero), "balance %s", w.Balance)

	var entry models.WalletEntry
	require.NoError(t, db.First(&entry, "payout_request_id = ?", request.ID).Error)
	assert.Equal(t, DebitKey(request.ID), entry.IdempotencyKey)
	assert.Equal(t, enums.WalletDirectionDebit, entry.Direction)
}

func TestService_DecidePaidWithInsufficientFundsLeavesRequestPending(t *testing.T) {
	db := setupPayoutsTestDB(t)
	svc, walletSvc := newPayoutsService(t, db)
	ctx := context.Background()
	vendorID := uuid.New()

	fundWallet(t, walletSvc, vendorID, "900.00")

	first, err := svc.Submit(ctx, SubmitInput{
		VendorID: vendorID,
		Amount:   decimal.RequireFromString("900.00"),
	})
	require.NoError(t, err)

	_, err = svc.Decide(ctx, DecideInput{RequestID: first.ID, Decision: "paid"})
	require.NoError(t, err)

	// Balance is now 0.00; a second approved request for 900.00 must fail.
	second, err := svc.Submit(ctx, SubmitInput{
		VendorID: vendorID,
		Amount:   decimal.RequireFromString("900.00"),
	})
	require.Error(t, err, "submission is blocked by balance check")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	_ = second

	// Force a pending request that outlived its funding to exercise the
	// decision-time re-check.
	stale := &models.PayoutRequest{
		ID:              uuid.New(),
		VendorID:        vendorID,
		RequestedAmount: decimal.RequireFromString("900.00"),
		Status:          enums.PayoutStatusPending,
	}
	require.NoError(t, db.Create(stale).Error)

	_, err = svc.Decide(ctx, DecideInput{RequestID: stale.ID, Decision: "paid"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInsufficientFunds))

	var reloaded models.PayoutRequest
	require.NoError(t, db.First(&reloaded, "id = ?", stale.ID).Error)
	assert.Equal(t, enums.PayoutStatusPending, reloaded.Status, "failed approval must leave the request pending")

	w, err := walletSvc.Wallet(ctx, vendorID)
	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(decimal.Zero))
}

func TestService_DecideRejectedRecordsNoteOnly(t *testing.T) {
	db := setupPayoutsTestDB(t)
	svc, walletSvc := newPayoutsService(t, db)
	ctx := context.Background()
	vendorID := uuid.New()

	fundWallet(t, walletSvc, vendorID, "300.00")

	request, err := svc.Submit(ctx, SubmitInput{
		VendorID: vendorID,
		Amount:   decimal.RequireFromString("300.00"),
	})
	require.NoError(t, err)

	note := "bank details missing"
	decided, err := svc.Decide(ctx, DecideInput{
		RequestID: request.ID,
		Decision:  "rejected",
		AdminNote: &note,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.PayoutStatusRejected, decided.Status)
	require.NotNil(t, decided.AdminResponse)
	assert.Equal(t, note, *decided.AdminResponse)

	w, err := walletSvc.Wallet(ctx, vendorID)
	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(decimal.RequireFromString("300.00")), "rejection must not touch the balance")
}

func TestService_DecideRequiresPendingRequest(t *testing.T) {
	db := setupPayoutsTestDB(t)
	svc, walletSvc := newPayoutsService(t, db)
	ctx := context.Background()
	vendorID := uuid.New()

	fundWallet(t, walletSvc, vendorID, "100.00")

	request, err := svc.Submit(ctx, SubmitInput{
		VendorID: vendorID,
		Amount:   decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)

	_, err = svc.Decide(ctx, DecideInput{RequestID: request.ID, Decision: "rejected"})
	require.NoError(t, err)

	_, err = svc.Decide(ctx, DecideInput{RequestID: request.ID, Decision: "paid"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeStateConflict))

	_, err = svc.Decide(ctx, DecideInput{RequestID: request.ID, Decision: "pending"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestService_ListByVendorPaginates(t *testing.T) {
	db := setupPayoutsTestDB(t)
	svc, walletSvc := newPayoutsService(t, db)
	ctx := context.Background()
	vendorID := uuid.New()

	fundWallet(t, walletSvc, vendorID, "1000.00")

	for i := 0; i < 3; i++ {
		request, err := svc.Submit(ctx, SubmitInput{
			VendorID: vendorID,
			Amount:   decimal.RequireFromString("100.00"),
		})
		require.NoError(t, err)
		_, err = svc.Decide(ctx, DecideInput{RequestID: request.ID, Decision: "rejected"})
		require.NoError(t, err)
	}

	page, err := svc.ListByVendor(ctx, vendorID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Requests, 2)
	require.NotEmpty(t, page.NextCursor)

	rest, err := svc.ListByVendor(ctx, vendorID, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Requests, 1)
}
