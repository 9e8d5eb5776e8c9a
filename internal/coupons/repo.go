package coupons

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/freshcart-backend/pkg/db/models"
)

// Repository persists coupons and their redemptions.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the coupon repository to the provided DB handle.
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

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

// FindByCode matches codes case-insensitively.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Where("UPPER(code) = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// IncrementUsage bumps used_count unless the coupon is exhausted, expired, or inactive.
func (r *Repository) IncrementUsage(ctx context.Context, couponID uuid.UUID, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("id = ? AND is_active = ?", couponID, true).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Where("usage_limit IS NULL OR used_count < usage_limit").
		UpdateColumns(map[string]any{
			"used_count": gorm.Expr("used_count + ?", 1),
			"updated_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repository) CreateUsage(ctx context.Context, usage *models.CouponUsage) error {
	return r.db.WithContext(ctx).Create(usage).Error
}

// Redeem claims one use of the coupon and records it against the order.
func (r *Repository) Redeem(ctx context.Context, usage *models.CouponUsage, now time.Time) error {
	ok, err := r.IncrementUsage(ctx, usage.CouponID, now)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCouponInvalid
	}
	return r.CreateUsage(ctx, usage)
}

// RedeemCoupon runs Redeem inside the caller's transaction.
func (r *Repository) RedeemCoupon(ctx context.Context, tx *gorm.DB, usage *models.CouponUsage, now time.Time) error {
	return r.WithTx(tx).Redeem(ctx, usage, now)
}
