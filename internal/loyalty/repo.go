package loyalty

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/freshcart-backend/pkg/db/models"
	"github.com/angelmondragon/freshcart-backend/pkg/enums"
)

// Repository manages the append-only loyalty ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, entry *models.LoyaltyLedgerEntry) error
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.LoyaltyLedgerEntry, error)
	ListExpirable(ctx context.Context, now time.Time, limit int) ([]models.LoyaltyLedgerEntry, error)
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.LoyaltyLedgerEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Append(ctx context.Context, entry *models.LoyaltyLedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Balance derives the spendable points from the ledger; it is never stored.
func (r *repository) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var balance int64
	err := r.db.WithContext(ctx).
		Model(&models.LoyaltyLedgerEntry{}).
		Select("CAST(COALESCE(SUM(CASE WHEN entry_type = ? THEN points ELSE -points END), 0) AS BIGINT)", enums.LoyaltyEntryEarned).
		Where("user_id = ?", userID).
		Scan(&balance).Error
	return balance, err
}

func (r *repository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.LoyaltyLedgerEntry, error) {
	var entries []models.LoyaltyLedgerEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// ListExpirable returns earned entries past their expiry that no expired entry references yet.
func (r *repository) ListExpirable(ctx context.Context, now time.Time, limit int) ([]models.LoyaltyLedgerEntry, error) {
	var entries []models.LoyaltyLedgerEntry
	err := r.db.WithContext(ctx).
		Table("loyalty_ledger_entries AS e").
		Select("e.*").
		Joins("LEFT JOIN loyalty_ledger_entries x ON x.source_entry_id = e.id").
		Where("e.entry_type = ? AND e.expires_at IS NOT NULL AND e.expires_at <= ?", enums.LoyaltyEntryEarned, now).
		Where("x.id IS NULL").
		Order("e.expires_at ASC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *repository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.LoyaltyLedgerEntry, error) {
	var entries []models.LoyaltyLedgerEntry
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
