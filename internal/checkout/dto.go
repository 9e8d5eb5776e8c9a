package checkout

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/freshcart-backend/internal/orders"
	"github.com/angelmondragon/freshcart-backend/pkg/db/models"
	"github.com/angelmondragon/freshcart-backend/pkg/enums"
)

// PlaceOrderInput is everything checkout needs besides the cart itself.
type PlaceOrderInput struct {
	UserID               uuid.UUID
	AddressID            uuid.UUID
	DeliverySlotID       uuid.UUID
	PaymentMethod        enums.PaymentMethod
	CouponID             *uuid.UUID
	DeliveryInstructions *string
}

// PlaceOrderRequest is the JSON body of POST /api/v1/orders.
type PlaceOrderRequest struct {
	AddressID            uuid.UUID  `json:"address_id" validate:"required"`
	DeliverySlotID       uuid.UUID  `json:"delivery_slot_id" validate:"required"`
	PaymentMethod        string     `json:"payment_method" validate:"required,oneof=cash_on_delivery card wallet upi"`
	CouponID             *uuid.UUID `json:"coupon_id,omitempty"`
	DeliveryInstructions *string    `json:"delivery_instructions,omitempty" validate:"omitempty,max=500"`
}

// ToInput binds the request to the authenticated user.
func (r PlaceOrderRequest) ToInput(userID uuid.UUID) PlaceOrderInput {
	var instructions *string
	if r.DeliveryInstructions != nil {
		if trimmed := strings.TrimSpace(*r.DeliveryInstructions); trimmed != "" {
			instructions = &trimmed
		}
	}
	return PlaceOrderInput{
		UserID:               userID,
		AddressID:            r.AddressID,
		DeliverySlotID:       r.DeliverySlotID,
		PaymentMethod:        enums.PaymentMethod(r.PaymentMethod),
		CouponID:             r.CouponID,
		DeliveryInstructions: instructions,
	}
}

// QuoteRequest is the JSON body of POST /api/v1/checkout/quote.
type QuoteRequest struct {
	CouponID *uuid.UUID `json:"coupon_id,omitempty"`
}

// Quote is a priced cart that has not been written anywhere.
type Quote struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	DeliveryFee  decimal.Decimal `json:"delivery_fee"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
	PointsEarned int64           `json:"points_earned"`
	ItemCount    int             `json:"item_count"`
}

// Result is the committed order.
type Result struct {
	Order        models.Order
	Items        []models.OrderItem
	Event        models.OrderTrackingEvent
	PointsEarned int64
}

// PlaceOrderResponse is the API shape of a placed order.
type PlaceOrderResponse struct {
	Order        orders.OrderDetail `json:"order"`
	PointsEarned int64              `json:"points_earned"`
}

// ToResponse renders the result for the API.
func (r Result) ToResponse() PlaceOrderResponse {
	order := r.Order
	order.Items = r.Items
	order.TrackingEvents = []models.OrderTrackingEvent{r.Event}
	return PlaceOrderResponse{Order: orders.ToDetail(order), PointsEarned: r.PointsEarned}
}
