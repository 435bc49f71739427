package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/prajwalbasnet/kinbech-backend/pkg/db/models"
	"github.com/prajwalbasnet/kinbech-backend/pkg/pagination"
)

// Repository manages persistence for vendor wallets and their ledger entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	EnsureWallet(ctx context.Context, vendorID uuid.UUID) error
	FindWallet(ctx context.Context, vendorID uuid.UUID) (*models.VendorWallet, error)
	CreateEntry(ctx context.Context, entry *models.WalletEntry) error
	AddBalance(ctx context.Context, vendorID uuid.UUID, amount decimal.Decimal) error
	SubtractBalance(ctx context.Context, vendorID uuid.UUID, amount decimal.Decimal) (bool, error)
	ListEntries(ctx context.Context, vendorID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.WalletEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// EnsureWallet creates the wallet row on first use; concurrent creates collapse
// into a no-op via the vendor_id unique constraint.
func (r *repository) EnsureWallet(ctx context.Context, vendorID uuid.UUID) error {
	wallet := models.VendorWallet{
		ID:       uuid.New(),
		VendorID: vendorID,
		Balance:  decimal.Zero,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "vendor_id"}},
			DoNothing: true,
		}).
		Create(&wallet).Error
}

func (r *repository) FindWallet(ctx context.Context, vendorID uuid.UUID) (*models.VendorWallet, error) {
	var wallet models.VendorWallet
	if err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.WalletEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// AddBalance moves the cached balance in a single statement so concurrent
// credits never lose an update.
func (r *repository) AddBalance(ctx context.Context, vendorID uuid.UUID, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.VendorWallet{}).
		Where("vendor_id = ?", vendorID).
		Update("balance", gorm.Expr("balance + ?", amount)).Error
}

// SubtractBalance debits the wallet only when funds cover the amount. The
// guard in the WHERE clause is what keeps the balance non-negative under
// concurrency; callers check the returned bool.
func (r *repository) SubtractBalance(ctx context.Context, vendorID uuid.UUID, amount decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.VendorWallet{}).
		Where("vendor_id = ? AND balance >= ?", vendorID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ListEntries(ctx context.Context, vendorID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.WalletEntry, error) {
	query := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC, id DESC").
		Limit(limit)

	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var entries []models.WalletEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
