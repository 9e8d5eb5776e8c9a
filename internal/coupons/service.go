package coupons

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/freshcart-backend/internal/pricing"
	"github.com/angelmondragon/freshcart-backend/pkg/db"
	"github.com/angelmondragon/freshcart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/freshcart-backend/pkg/errors"
)

// ErrCouponInvalid covers missing, inactive, expired, and exhausted coupons.
var ErrCouponInvalid = pkgerrors.New(pkgerrors.CodeCouponInvalid, "coupon is not redeemable")

// Usable reports whether the coupon can be applied at the given instant.
func Usable(coupon *models.Coupon, now time.Time) bool {
	if coupon == nil || !coupon.IsActive {
		return false
	}
	if coupon.ExpiresAt != nil && !coupon.ExpiresAt.After(now) {
		return false
	}
	if coupon.UsageLimit != nil && coupon.UsedCount >= *coupon.UsageLimit {
		return false
	}
	return true
}

// ToPricing converts a stored coupon into the price calculator's input.
func ToPricing(coupon *models.Coupon) *pricing.Coupon {
	if coupon == nil {
		return nil
	}
	return &pricing.Coupon{
		Type:        coupon.DiscountType,
		Value:       coupon.DiscountValue,
		MaxDiscount: coupon.MaxDiscountAmount,
	}
}

// CouponDTO is the public view of a redeemable coupon.
type CouponDTO struct {
	ID                uuid.UUID        `json:"id"`
	Code              string           `json:"code"`
	Description       *string          `json:"description,omitempty"`
	DiscountType      string           `json:"discount_type"`
	DiscountValue     decimal.Decimal  `json:"discount_value"`
	MaxDiscountAmount *decimal.Decimal `json:"max_discount_amount,omitempty"`
	ExpiresAt         *time.Time       `json:"expires_at,omitempty"`
}

// Service resolves coupons for checkout and lookup.
type Service interface {
	GetActive(ctx context.Context, couponID uuid.UUID) (*models.Coupon, error)
	LookupCode(ctx context.Context, code string) (*CouponDTO, error)
}

type service struct {
	repo *Repository
	now  func() time.Time
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// GetActive loads a coupon by id and fails with ErrCouponInvalid unless it is usable now.
func (s *service) GetActive(ctx context.Context, couponID uuid.UUID) (*models.Coupon, error) {
	coupon, err := s.repo.FindByID(ctx, couponID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrCouponInvalid
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load coupon")
	}
	if !Usable(coupon, s.now().UTC()) {
		return nil, ErrCouponInvalid
	}
	return coupon, nil
}

func (s *service) LookupCode(ctx context.Context, code string) (*CouponDTO, error) {
	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrCouponInvalid
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load coupon")
	}
	if !Usable(coupon, s.now().UTC()) {
		return nil, ErrCouponInvalid
	}
	return &CouponDTO{
		ID:                coupon.ID,
		Code:              coupon.Code,
		Description:       coupon.Description,
		DiscountType:      string(coupon.DiscountType),
		DiscountValue:     coupon.DiscountValue,
		MaxDiscountAmount: coupon.MaxDiscountAmount,
		ExpiresAt:         coupon.ExpiresAt,
	}, nil
}
