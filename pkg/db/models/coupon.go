package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/freshcart-backend/pkg/enums"
)

// Coupon is a percentage or flat discount rule redeemable at checkout.
type Coupon struct {
	ID                uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code              string                   `gorm:"column:code;not null;uniqueIndex"`
	Description       *string                  `gorm:"column:description"`
	DiscountType      enums.CouponDiscountType `gorm:"column:discount_type;type:coupon_discount_type;not null"`
	DiscountValue     decimal.Decimal          `gorm:"column:discount_value;type:numeric(12,2);not null"`
	MaxDiscountAmount *decimal.Decimal         `gorm:"column:max_discount_amount;type:numeric(12,2)"`
	UsageLimit        *int                     `gorm:"column:usage_limit"`
	UsedCount         int                      `gorm:"column:used_count;not null;default:0"`
	IsActive          bool                     `gorm:"column:is_active;not null"`
	ExpiresAt         *time.Time               `gorm:"column:expires_at;type:timestamptz"`
	CreatedAt         time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// CouponUsage records one redemption of a coupon by an order.
type CouponUsage struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CouponID       uuid.UUID       `gorm:"column:coupon_id;type:uuid;not null;index"`
	UserID         uuid.UUID       `gorm:"column:user_id;type:uuid;not null"`
	OrderID        uuid.UUID       `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	DiscountAmount decimal.Decimal `gorm:"column:discount_amount;type:numeric(12,2);not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}
