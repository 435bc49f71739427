package commission

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/prajwalbasnet/kinbech-backend/pkg/config"
	apperrors "github.com/prajwalbasnet/kinbech-backend/pkg/errors"
)

func setupCommissionTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS vendor_commissions (
  id TEXT PRIMARY KEY,
  vendor_id TEXT NOT NULL,
  rate NUMERIC NOT NULL,
  effective_from DATETIME,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newCommissionService(t *testing.T) Service {
	t.Helper()
	db := setupCommissionTestDB(t)
	svc, err := NewService(NewRepository(db), config.LedgerConfig{DefaultCommissionRate: "0.10"})
	require.NoError(t, err)
	return svc
}

func TestService_ResolveFallsBackWithoutRecords(t *testing.T) {
	svc := newCommissionService(t)

	rate, err := svc.Resolve(context.Background(), uuid.New(), time.Now())
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.10")), "rate %s", rate)
}

func TestService_ResolvePicksEffectiveRecord(t *testing.T) {
	svc := newCommissionService(t)
	ctx := context.Background()
	vendorID := uuid.New()

	past := time.Now().Add(-48 * time.Hour)
	future := time.Now().Add(48 * time.Hour)

	_, err := svc.SetRate(ctx, SetRateInput{
		VendorID:      vendorID,
		Rate:          decimal.RequireFromString("0.15"),
		EffectiveFrom: &past,
	})
	require.NoError(t, err)

	_, err = svc.SetRate(ctx, SetRateInput{
		VendorID:      vendorID,
		Rate:          decimal.RequireFromString("0.20"),
		EffectiveFrom: &future,
	})
	require.NoError(t, err)

	rate, err := svc.Resolve(ctx, vendorID, time.Now())
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.15")),
		"future-dated record must not apply yet, got %s", rate)

	rate, err = svc.Resolve(ctx, vendorID, future.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.20")), "rate %s", rate)
}

func TestService_ResolvePrefersDatedOverOpenEnded(t *testing.T) {
	svc := newCommissionService(t)
	ctx := context.Background()
	vendorID := uuid.New()

	_, err := svc.SetRate(ctx, SetRateInput{
		VendorID: vendorID,
		Rate:     decimal.RequireFromString("0.12"),
	})
	require.NoError(t, err)

	dated := time.Now().Add(-time.Hour)
	_, err = svc.SetRate(ctx, SetRateInput{
		VendorID:      vendorID,
		Rate:          decimal.RequireFromString("0.18"),
		EffectiveFrom: &dated,
	})
	require.NoError(t, err)

	rate, err := svc.Resolve(ctx, vendorID, time.Now())
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.18")), "rate %s", rate)
}

func TestService_SetRateValidatesRange(t *testing.T) {
	svc := newCommissionService(t)
	ctx := context.Background()

	_, err := svc.SetRate(ctx, SetRateInput{
		VendorID: uuid.New(),
		Rate:     decimal.RequireFromString("1.5"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = svc.SetRate(ctx, SetRateInput{
		VendorID: uuid.New(),
		Rate:     decimal.RequireFromString("-0.1"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestService_HistoryListsNewestFirst(t *testing.T) {
	svc := newCommissionService(t)
	ctx := context.Background()
	vendorID := uuid.New()

	for _, raw := range []string{"0.10", "0.12", "0.14"} {
		_, err := svc.SetRate(ctx, SetRateInput{
			VendorID: vendorID,
			Rate:     decimal.RequireFromString(raw),
		})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	records, err := svc.History(ctx, vendorID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.True(t, records[0].Rate.Equal(decimal.RequireFromString("0.14")))
}
