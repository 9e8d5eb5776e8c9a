// Package pricing computes checkout totals. Every function here is pure.
package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/freshcart-backend/pkg/enums"
)

const moneyPlaces = 2

var (
	// DefaultFreeDeliveryThreshold is the subtotal that must be exceeded for free delivery.
	DefaultFreeDeliveryThreshold = decimal.NewFromInt(200)
	// DefaultFlatDeliveryFee applies at or below the free delivery threshold.
	DefaultFlatDeliveryFee = decimal.NewFromInt(30)
	// DefaultPointsPerAmount is the spend that earns one loyalty point.
	DefaultPointsPerAmount = decimal.NewFromInt(100)

	hundred = decimal.NewFromInt(100)
)

// Line is a priced cart line.
type Line struct {
	ProductID   uuid.UUID
	VariationID *uuid.UUID
	UnitPrice   decimal.Decimal
	Quantity    int
}

// LineTotal returns unit price times quantity.
func (l Line) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Coupon is the subset of a coupon that affects pricing.
type Coupon struct {
	Type        enums.CouponDiscountType
	Value       decimal.Decimal
	MaxDiscount *decimal.Decimal
}

// Totals is the outcome of a price calculation.
type Totals struct {
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
}

// Rules holds the delivery fee and loyalty constants.
type Rules struct {
	FreeDeliveryThreshold decimal.Decimal
	FlatDeliveryFee       decimal.Decimal
	PointsPerAmount       decimal.Decimal
}

// DefaultRules returns the storefront defaults: free delivery above 200, otherwise 30,
// and one point per 100 spent.
func DefaultRules() Rules {
	return Rules{
		FreeDeliveryThreshold: DefaultFreeDeliveryThreshold,
		FlatDeliveryFee:       DefaultFlatDeliveryFee,
		PointsPerAmount:       DefaultPointsPerAmount,
	}
}

// CalculateTotals prices lines with the default rules.
func CalculateTotals(lines []Line, coupon *Coupon) Totals {
	return DefaultRules().CalculateTotals(lines, coupon)
}

// PointsEarned applies the default points rule.
func PointsEarned(total decimal.Decimal) int64 {
	return DefaultRules().PointsEarned(total)
}

// CalculateTotals returns subtotal, delivery fee, discount and the grand total.
// The total is floored at zero.
func (r Rules) CalculateTotals(lines []Line, coupon *Coupon) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal())
	}
	subtotal = subtotal.Round(moneyPlaces)

	fee := r.FlatDeliveryFee
	if subtotal.GreaterThan(r.FreeDeliveryThreshold) {
		fee = decimal.Zero
	}

	discount := Discount(subtotal, coupon)

	total := subtotal.Add(fee).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: fee.Round(moneyPlaces),
		Discount:    discount,
		Total:       total.Round(moneyPlaces),
	}
}

// Discount computes the coupon discount for a subtotal. It never exceeds the
// subtotal nor the coupon cap.
func Discount(subtotal decimal.Decimal, coupon *Coupon) decimal.Decimal {
	if coupon == nil || !subtotal.IsPositive() {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch coupon.Type {
	case enums.CouponDiscountPercentage:
		discount = subtotal.Mul(coupon.Value).Div(hundred)
		limit := subtotal
		if coupon.MaxDiscount != nil {
			limit = *coupon.MaxDiscount
		}
		discount = decimal.Min(discount, limit)
	case enums.CouponDiscountFlat:
		discount = coupon.Value
	default:
		return decimal.Zero
	}

	discount = decimal.Min(discount, subtotal)
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount.Round(moneyPlaces)
}

// PointsEarned returns floor(total / PointsPerAmount).
func (r Rules) PointsEarned(total decimal.Decimal) int64 {
	if !total.IsPositive() || !r.PointsPerAmount.IsPositive() {
		return 0
	}
	return total.Div(r.PointsPerAmount).Floor().IntPart()
}
