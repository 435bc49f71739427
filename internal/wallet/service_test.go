package wallet

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	apperrors "github.com/prajwalbasnet/kinbech-backend/pkg/errors"
	"github.com/prajwalbasnet/kinbech-backend/pkg/pagination"
)

func setupWalletTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	wallets := `
CREATE TABLE IF NOT EXISTS vendor_wallets (
  id TEXT PRIMARY KEY,
  vendor_id TEXT NOT NULL UNIQUE,
  balance NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	entries := `
CREATE TABLE IF NOT EXISTS wallet_entries (
  id TEXT PRIMARY KEY,
  vendor_id TEXT NOT NULL,
  order_id TEXT,
  payout_request_id TEXT,
  direction TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  idempotency_key TEXT NOT NULL UNIQUE,
  note TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(wallets).Error)
	require.NoError(t, db.Exec(entries).Error)
	return db
}

func newWalletService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := setupWalletTestDB(t)
	svc, err := NewService(NewRepository(db), nil)
	require.NoError(t, err)
	return svc, db
}

func TestService_CreditCreatesWalletAndEntry(t *testing.T) {
	svc, _ := newWalletService(t)
	ctx := context.Background()
	vendorID := uuid.New()

	entry, err := svc.Credit(ctx, MovementInput{
		VendorID:       vendorID,
		Amount:         decimal.RequireFromString("900.00"),
		IdempotencyKey: "earnings:order-1:" + vendorID.String(),
	})
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.Amount.Equal(decimal.RequireFromString("900.00")))

	wallet, err := svc.Wallet(ctx, vendorID)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.RequireFromString("900.00")),
		"balance %s", wallet.Balance)
}

func TestService_CreditIsIdempotent(t *testing.T) {
	svc, _ := newWalletService(t)
	ctx := context.Background()
	vendorID := uuid.New()

	input := MovementInput{
		VendorID:       vendorID,
		Amount:         decimal.RequireFromString("150.00"),
		IdempotencyKey: "earnings:order-2:" + vendorID.String(),
	}

	_, err := svc.Credit(ctx, input)
	require.NoError(t, err)

	_, err = svc.Credit(ctx, input)
	require.ErrorIs(t, err, ErrDuplicateEntry)

	wallet, err := svc.Wallet(ctx, vendorID)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.RequireFromString("150.00")),
		"duplicate credit must not move the balance, got %s", wallet.Balance)
}

func TestService_DebitRejectsInsufficientFunds(t *testing.T) {
	svc, _ := newWalletService(t)
	ctx := context.Background()
	vendorID := uuid.New()

	_, err := svc.Credit(ctx, MovementInput{
		VendorID:       vendorID,
		Amount:         decimal.RequireFromString("50.00"),
		IdempotencyKey: "earnings:order-3:" + vendorID.String(),
	})
	require.NoError(t, err)

	_, err = svc.Debit(ctx, MovementInput{
		VendorID:       vendorID,
		Amount:         decimal.RequireFromString("80.00"),
		IdempotencyKey: "payout:req-1",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInsufficientFunds))

	wallet, err := svc.Wallet(ctx, vendorID)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.RequireFromString("50.00")))
}

func TestService_DebitMovesBalanceOnce(t *testing.T) {
	svc, _ := newWalletService(t)
	ctx := context.Background()
	vendorID := uuid.New()

	_, err := svc.Credit(ctx, MovementInput{
		VendorID:       vendorID,
		Amount:         decimal.RequireFromString("200.00"),
		IdempotencyKey: "earnings:order-4:" + vendorID.String(),
	})
	require.NoError(t, err)

	debit := MovementInput{
		VendorID:       vendorID,
		Amount:         decimal.RequireFromString("120.00"),
		IdempotencyKey: "payout:req-2",
	}
	entry, err := svc.Debit(ctx, debit)
	require.NoError(t, err)
	require.NotNil(t, entry)

	_, err = svc.Debit(ctx, debit)
	require.ErrorIs(t, err, ErrDuplicateEntry)

	wallet, err := svc.Wallet(ctx, vendorID)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.RequireFromString("80.00")),
		"balance %s", wallet.Balance)
}

func TestService_MovementValidation(t *testing.T) {
	svc, _ := newWalletService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, MovementInput{
		VendorID:       uuid.New(),
		Amount:         decimal.Zero,
		IdempotencyKey: "key",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = svc.Credit(ctx, MovementInput{
		VendorID:       uuid.New(),
		Amount:         decimal.RequireFromString("10.00"),
		IdempotencyKey: "  ",
	})
	require.Error(t, err)

	var appErr *apperrors.Error
	_, err = svc.Credit(ctx, MovementInput{
		Amount:         decimal.RequireFromString("10.00"),
		IdempotencyKey: "key",
	})
	require.Error(t, err)
	assert.False(t, errors.As(err, &appErr), "missing vendor id is a programmer error")
}

func TestService_EntriesPaginates(t *testing.T) {
	svc, _ := newWalletService(t)
	ctx := context.Background()
	vendorID := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := svc.Credit(ctx, MovementInput{
			VendorID:       vendorID,
			Amount:         decimal.RequireFromString("10.00"),
			IdempotencyKey: fmt.Sprintf("earnings:order-%d:%s", i, vendorID),
		})
		require.NoError(t, err)
	}

	page, err := svc.Entries(ctx, vendorID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	require.NotEmpty(t, page.NextCursor)

	rest, err := svc.Entries(ctx, vendorID, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Entries, 1)
	assert.Empty(t, rest.NextCursor)
}
