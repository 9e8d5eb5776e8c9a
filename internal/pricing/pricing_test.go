package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/freshcart-backend/pkg/enums"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func ptr(v decimal.Decimal) *decimal.Decimal {
	return &v
}

func TestCalculateTotalsScenarios(t *testing.T) {
	cases := []struct {
		name     string
		lines    []Line
		coupon   *Coupon
		subtotal string
		fee      string
		discount string
		total    string
	}{
		{
			name:     "two lines above threshold",
			lines:    []Line{{UnitPrice: d("100"), Quantity: 2}, {UnitPrice: d("50"), Quantity: 1}},
			subtotal: "250", fee: "0", discount: "0", total: "250",
		},
		{
			name:     "subtotal at threshold pays delivery",
			lines:    []Line{{UnitPrice: d("200"), Quantity: 1}},
			subtotal: "200", fee: "30", discount: "0", total: "230",
		},
		{
			name:     "subtotal just above threshold ships free",
			lines:    []Line{{UnitPrice: d("200.01"), Quantity: 1}},
			subtotal: "200.01", fee: "0", discount: "0", total: "200.01",
		},
		{
			name:     "percentage coupon capped",
			lines:    []Line{{UnitPrice: d("100"), Quantity: 2}},
			coupon:   &Coupon{Type: enums.CouponDiscountPercentage, Value: d("50"), MaxDiscount: ptr(d("50"))},
			subtotal: "200", fee: "30", discount: "50", total: "180",
		},
		{
			name:     "percentage coupon uncapped",
			lines:    []Line{{UnitPrice: d("100"), Quantity: 2}},
			coupon:   &Coupon{Type: enums.CouponDiscountPercentage, Value: d("50")},
			subtotal: "200", fee: "30", discount: "100", total: "130",
		},
		{
			name:     "flat coupon limited to subtotal",
			lines:    []Line{{UnitPrice: d("20"), Quantity: 1}},
			coupon:   &Coupon{Type: enums.CouponDiscountFlat, Value: d("75")},
			subtotal: "20", fee: "30", discount: "20", total: "30",
		},
		{
			name:     "flat coupon",
			lines:    []Line{{UnitPrice: d("60"), Quantity: 3}},
			coupon:   &Coupon{Type: enums.CouponDiscountFlat, Value: d("15")},
			subtotal: "180", fee: "30", discount: "15", total: "195",
		},
		{
			name:     "empty lines",
			lines:    nil,
			subtotal: "0", fee: "30", discount: "0", total: "30",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateTotals(tc.lines, tc.coupon)
			assertMoney(t, "subtotal", got.Subtotal, tc.subtotal)
			assertMoney(t, "delivery fee", got.DeliveryFee, tc.fee)
			assertMoney(t, "discount", got.Discount, tc.discount)
			assertMoney(t, "total", got.Total, tc.total)
		})
	}
}

func TestCalculateTotalsIsDeterministic(t *testing.T) {
	lines := []Line{{UnitPrice: d("12.35"), Quantity: 3}, {UnitPrice: d("99.99"), Quantity: 2}}
	coupon := &Coupon{Type: enums.CouponDiscountPercentage, Value: d("12.5")}

	first := CalculateTotals(lines, coupon)
	for i := 0; i < 10; i++ {
		again := CalculateTotals(lines, coupon)
		if !again.Subtotal.Equal(first.Subtotal) || !again.DeliveryFee.Equal(first.DeliveryFee) ||
			!again.Discount.Equal(first.Discount) || !again.Total.Equal(first.Total) {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, first)
		}
	}
}

func TestTotalNeverNegative(t *testing.T) {
	rules := Rules{
		FreeDeliveryThreshold: d("0"),
		FlatDeliveryFee:       d("0"),
		PointsPerAmount:       d("100"),
	}
	got := rules.CalculateTotals(
		[]Line{{UnitPrice: d("10"), Quantity: 1}},
		&Coupon{Type: enums.CouponDiscountFlat, Value: d("10")},
	)
	assertMoney(t, "total", got.Total, "0")
	if got.Total.IsNegative() {
		t.Fatalf("total must not be negative: %s", got.Total)
	}
}

func TestPointsEarned(t *testing.T) {
	cases := map[string]int64{
		"149":    1,
		"99":     0,
		"250":    2,
		"100":    1,
		"99.99":  0,
		"0":      0,
		"1000.5": 10,
	}
	for total, want := range cases {
		if got := PointsEarned(d(total)); got != want {
			t.Fatalf("total %s: expected %d points, got %d", total, want, got)
		}
	}
}

func TestDiscountIgnoresUnknownType(t *testing.T) {
	got := Discount(d("100"), &Coupon{Type: "bogo", Value: d("10")})
	if !got.IsZero() {
		t.Fatalf("expected zero discount, got %s", got)
	}
}

func assertMoney(t *testing.T, field string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Fatalf("%s: expected %s, got %s", field, want, got)
	}
}
