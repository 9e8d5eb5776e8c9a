package coupons

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/freshcart-backend/pkg/db/dbtest"
	"github.com/angelmondragon/freshcart-backend/pkg/db/models"
	"github.com/angelmondragon/freshcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/freshcart-backend/pkg/errors"
)

func seedCoupon(t *testing.T, conn *gorm.DB, code string, mutate func(*models.Coupon)) *models.Coupon {
	t.Helper()
	coupon := &models.Coupon{
		Code:          code,
		DiscountType:  enums.CouponDiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		IsActive:      true,
	}
	if mutate != nil {
		mutate(coupon)
	}
	if err := conn.Create(coupon).Error; err != nil {
		t.Fatalf("seed coupon: %v", err)
	}
	return coupon
}

func TestUsable(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)
	limit := 2

	tests := []struct {
		name   string
		coupon *models.Coupon
		want   bool
	}{
		{name: "active", coupon: &models.Coupon{IsActive: true}, want: true},
		{name: "inactive", coupon: &models.Coupon{IsActive: false}},
		{name: "expired", coupon: &models.Coupon{IsActive: true, ExpiresAt: &past}},
		{name: "not yet expired", coupon: &models.Coupon{IsActive: true, ExpiresAt: &future}, want: true},
		{name: "exhausted", coupon: &models.Coupon{IsActive: true, UsageLimit: &limit, UsedCount: 2}},
		{name: "under limit", coupon: &models.Coupon{IsActive: true, UsageLimit: &limit, UsedCount: 1}, want: true},
		{name: "nil", coupon: nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Usable(tc.coupon, now); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestGetActive(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	active := seedCoupon(t, conn, "FRESH10", nil)
	inactive := seedCoupon(t, conn, "OLD", func(c *models.Coupon) { c.IsActive = false })

	if _, err := svc.GetActive(ctx, active.ID); err != nil {
		t.Fatalf("expected active coupon, got %v", err)
	}
	if _, err := svc.GetActive(ctx, inactive.ID); err != ErrCouponInvalid {
		t.Fatalf("expected ErrCouponInvalid for inactive coupon, got %v", err)
	}
	if _, err := svc.GetActive(ctx, uuid.New()); !pkgerrors.Is(err, pkgerrors.CodeCouponInvalid) {
		t.Fatalf("expected COUPON_INVALID for missing coupon, got %v", err)
	}

	dto, err := svc.LookupCode(ctx, " fresh10 ")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if dto.ID != active.ID {
		t.Fatalf("unexpected coupon %s", dto.ID)
	}
}

func TestRedeemHonoursUsageLimit(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	now := time.Now().UTC()
	limit := 1
	coupon := seedCoupon(t, conn, "ONCE", func(c *models.Coupon) { c.UsageLimit = &limit })

	first := &models.CouponUsage{CouponID: coupon.ID, UserID: uuid.New(), OrderID: uuid.New(), DiscountAmount: decimal.NewFromInt(5)}
	if err := repo.Redeem(ctx, first, now); err != nil {
		t.Fatalf("first redeem: %v", err)
	}

	second := &models.CouponUsage{CouponID: coupon.ID, UserID: uuid.New(), OrderID: uuid.New(), DiscountAmount: decimal.NewFromInt(5)}
	if err := repo.Redeem(ctx, second, now); err != ErrCouponInvalid {
		t.Fatalf("expected ErrCouponInvalid once limit reached, got %v", err)
	}

	stored, err := repo.FindByID(ctx, coupon.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.UsedCount != 1 {
		t.Fatalf("expected used_count 1, got %d", stored.UsedCount)
	}
}
