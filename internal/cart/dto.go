package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/freshcart-backend/internal/pricing"
)

// Line is one cart line with its authoritative unit price.
type Line struct {
	CartItemID    uuid.UUID
	ProductID     uuid.UUID
	VariationID   *uuid.UUID
	ProductName   string
	VariationName *string
	Quantity      int
	UnitPrice     decimal.Decimal
	// Available is false once the product or variation is delisted.
	Available     bool
}

// PricingLine adapts the line for the price calculator.
func (l Line) PricingLine() pricing.Line {
	return pricing.Line{
		ProductID:   l.ProductID,
		VariationID: l.VariationID,
		UnitPrice:   l.UnitPrice,
		Quantity:    l.Quantity,
	}
}

// Unavailable returns the lines whose product or variation is no longer sold.
func Unavailable(lines []Line) []Line {
	var out []Line
	for _, l := range lines {
		if !l.Available {
			out = append(out, l)
		}
	}
	return out
}

// PricingLines adapts a snapshot for the price calculator.
func PricingLines(lines []Line) []pricing.Line {
	out := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.PricingLine())
	}
	return out
}

// AddItemInput is the payload for adding a product to the cart.
type AddItemInput struct {
	ProductID   uuid.UUID  `json:"product_id" validate:"required"`
	VariationID *uuid.UUID `json:"variation_id,omitempty"`
	Quantity    int        `json:"quantity" validate:"required,min=1,max=99"`
}

// UpdateItemInput changes the quantity of an existing line.
type UpdateItemInput struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=99"`
}

// LineDTO is a priced cart line as returned to clients.
type LineDTO struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	VariationID   *uuid.UUID      `json:"variation_id,omitempty"`
	ProductName   string          `json:"product_name"`
	VariationName *string         `json:"variation_name,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	LineTotal     decimal.Decimal `json:"line_total"`
	Available     bool            `json:"available"`
}

// View is the cart plus a delivery fee and total preview without a coupon.
// Delisted lines are listed but left out of the totals.
type View struct {
	Items       []LineDTO       `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
}

func buildView(lines []Line, rules pricing.Rules) *View {
	var priced []Line
	for _, l := range lines {
		if l.Available {
			priced = append(priced, l)
		}
	}
	totals := rules.CalculateTotals(PricingLines(priced), nil)
	view := &View{
		Items:       make([]LineDTO, 0, len(lines)),
		Subtotal:    totals.Subtotal,
		DeliveryFee: totals.DeliveryFee,
		Total:       totals.Total,
	}
	if len(priced) == 0 {
		view.DeliveryFee = decimal.Zero
		view.Total = decimal.Zero
	}
	for _, l := range lines {
		view.Items = append(view.Items, LineDTO{
			ID:            l.CartItemID,
			ProductID:     l.ProductID,
			VariationID:   l.VariationID,
			ProductName:   l.ProductName,
			VariationName: l.VariationName,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
			LineTotal:     l.PricingLine().LineTotal(),
			Available:     l.Available,
		})
	}
	return view
}
