package slots

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/freshcart-backend/pkg/db"
	"github.com/angelmondragon/freshcart-backend/pkg/db/models"
)

// Repository persists delivery slots and their capacity counters.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the slot repository to the provided DB handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Get loads a slot by id. An unknown id is reported as ErrSlotUnavailable.
func (r *Repository) Get(ctx context.Context, slotID uuid.UUID) (*models.DeliverySlot, error) {
	var slot models.DeliverySlot
	if err := r.db.WithContext(ctx).Where("id = ?", slotID).First(&slot).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}
	return &slot, nil
}

// TryReserve claims one unit of capacity. The conditional update is both the
// capacity re-check and the increment, so two writers can never overfill a slot.
func (r *Repository) TryReserve(ctx context.Context, slotID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.DeliverySlot{}).
		Where("id = ? AND is_available = ? AND current_orders < max_orders", slotID, true).
		UpdateColumns(map[string]any{
			"current_orders": gorm.Expr("current_orders + ?", 1),
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Release returns one unit of capacity, never dropping below zero.
func (r *Repository) Release(ctx context.Context, slotID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.DeliverySlot{}).
		Where("id = ? AND current_orders > 0", slotID).
		UpdateColumns(map[string]any{
			"current_orders": gorm.Expr("current_orders - ?", 1),
			"updated_at":     time.Now().UTC(),
		}).Error
}

// ListUpcoming returns open slots that start after the given instant.
func (r *Repository) ListUpcoming(ctx context.Context, after time.Time, limit int) ([]models.DeliverySlot, error) {
	var rows []models.DeliverySlot
	err := r.db.WithContext(ctx).
		Where("starts_at > ? AND is_available = ? AND current_orders < max_orders", after, true).
		Order("starts_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *Repository) Create(ctx context.Context, slot *models.DeliverySlot) error {
	return r.db.WithContext(ctx).Create(slot).Error
}

func (r *Repository) SetAvailability(ctx context.Context, slotID uuid.UUID, available bool) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.DeliverySlot{}).
		Where("id = ?", slotID).
		UpdateColumns(map[string]any{
			"is_available": available,
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CloseEnded marks every still-open slot whose window ended before now as unavailable.
func (r *Repository) CloseEnded(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.DeliverySlot{}).
		Where("ends_at <= ? AND is_available = ?", now, true).
		UpdateColumns(map[string]any{
			"is_available": false,
			"updated_at":   now,
		})
	return res.RowsAffected, res.Error
}

// ReleaseSlot releases capacity through the caller's transaction.
func (r *Repository) ReleaseSlot(ctx context.Context, tx *gorm.DB, slotID uuid.UUID) error {
	return r.WithTx(tx).Release(ctx, slotID)
}

// ReserveSlot runs TryReserve inside the caller's transaction.
func (r *Repository) ReserveSlot(ctx context.Context, tx *gorm.DB, slotID uuid.UUID) (bool, error) {
	return r.WithTx(tx).TryReserve(ctx, slotID)
}
