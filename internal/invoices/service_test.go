package invoices

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

	"github.com/prajwalbasnet/kinbech-backend/pkg/db/models"
	"github.com/prajwalbasnet/kinbech-backend/pkg/enums"
)

func setupInvoicesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS invoices (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  vendor_id TEXT NOT NULL,
  invoice_number TEXT NOT NULL UNIQUE,
  subtotal NUMERIC NOT NULL DEFAULT 0,
  tax NUMERIC NOT NULL DEFAULT 0,
  discount NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL DEFAULT 0,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedInvoice(t *testing.T, db *gorm.DB, orderID uuid.UUID) *models.Invoice {
	t.Helper()
	invoice := &models.Invoice{
		ID:            uuid.New(),
		OrderID:       orderID,
		VendorID:      uuid.New(),
		InvoiceNumber: "INV-" + uuid.NewString()[:8],
		Subtotal:      decimal.RequireFromString("100.00"),
		Total:         decimal.RequireFromString("100.00"),
		PaymentStatus: enums.InvoiceStatusPending,
	}
	require.NoError(t, db.Create(invoice).Error)
	return invoice
}

func TestService_SyncPaymentStatusUpdatesAllInvoices(t *testing.T) {
	db := setupInvoicesTestDB(t)
	svc, err := NewService(NewRepository(db), nil)
	require.NoError(t, err)
	ctx := context.Background()

	orderID := uuid.New()
	seedInvoice(t, db, orderID)
	seedInvoice(t, db, orderID)
	other := seedInvoice(t, db, uuid.New())

	updated, err := svc.SyncPaymentStatus(ctx, orderID, enums.PaymentStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	invoices, err := svc.ListByOrder(ctx, orderID)
	require.NoError(t, err)
	for _, inv := range invoices {
		assert.Equal(t, enums.InvoiceStatusPaid, inv.PaymentStatus)
	}

	var untouched models.Invoice
	require.NoError(t, db.First(&untouched, "id = ?", other.ID).Error)
	assert.Equal(t, enums.InvoiceStatusPending, untouched.PaymentStatus)
}

func TestService_SyncPaymentStatusMapsRefundedToFailed(t *testing.T) {
	db := setupInvoicesTestDB(t)
	svc, err := NewService(NewRepository(db), nil)
	require.NoError(t, err)
	ctx := context.Background()

	orderID := uuid.New()
	seedInvoice(t, db, orderID)

	updated, err := svc.SyncPaymentStatus(ctx, orderID, enums.PaymentStatusRefunded)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	invoices, err := svc.ListByOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, enums.InvoiceStatusFailed, invoices[0].PaymentStatus)
}

func TestService_SyncPaymentStatusWithoutInvoicesIsNotAnError(t *testing.T) {
	db := setupInvoicesTestDB(t)
	svc, err := NewService(NewRepository(db), nil)
	require.NoError(t, err)

	updated, err := svc.SyncPaymentStatus(context.Background(), uuid.New(), enums.PaymentStatusPaid)
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestService_SyncPaymentStatusRejectsUnknownStatus(t *testing.T) {
	db := setupInvoicesTestDB(t)
	svc, err := NewService(NewRepository(db), nil)
	require.NoError(t, err)

	_, err = svc.SyncPaymentStatus(context.Background(), uuid.New(), enums.PaymentStatus("partial"))
	require.Error(t, err)
}
