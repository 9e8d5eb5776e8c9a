package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/freshcart-backend/pkg/db/models"
)

// OrderItemDTO is a frozen order line.
type OrderItemDTO struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	VariationID   *uuid.UUID      `json:"variation_id,omitempty"`
	ProductName   string          `json:"product_name"`
	VariationName *string         `json:"variation_name,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

// TrackingEventDTO is one entry of the order timeline.
type TrackingEventDTO struct {
	Status    string    `json:"status"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderDetail is the full order view including items and timeline.
type OrderDetail struct {
	ID                   uuid.UUID          `json:"id"`
	Status               string             `json:"status"`
	PaymentMethod        string             `json:"payment_method"`
	AddressID            uuid.UUID          `json:"address_id"`
	DeliverySlotID       uuid.UUID          `json:"delivery_slot_id"`
	CouponID             *uuid.UUID         `json:"coupon_id,omitempty"`
	Subtotal             decimal.Decimal    `json:"subtotal"`
	DeliveryFee          decimal.Decimal    `json:"delivery_fee"`
	DiscountAmount       decimal.Decimal    `json:"discount_amount"`
	TotalAmount          decimal.Decimal    `json:"total_amount"`
	PointsEarned         int64              `json:"points_earned"`
	DeliveryAddress      string             `json:"delivery_address"`
	DeliveryInstructions *string            `json:"delivery_instructions,omitempty"`
	Items                []OrderItemDTO     `json:"items"`
	Timeline             []TrackingEventDTO `json:"timeline"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// OrderSummary is the list view of an order.
type OrderSummary struct {
	ID             uuid.UUID       `json:"id"`
	Status         string          `json:"status"`
	DeliverySlotID uuid.UUID       `json:"delivery_slot_id"`
	ItemCount      int             `json:"item_count"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PointsEarned   int64           `json:"points_earned"`
	CreatedAt      time.Time       `json:"created_at"`
}

// OrderList is a page of order summaries.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// StatusUpdateInput is the admin payload for moving an order along its lifecycle.
type StatusUpdateInput struct {
	Status string  `json:"status" validate:"required"`
	Note   *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// ToDetail maps a stored order (with items and events preloaded) to its API shape.
func ToDetail(order models.Order) OrderDetail {
	detail := OrderDetail{
		ID:                   order.ID,
		Status:               string(order.Status),
		PaymentMethod:        string(order.PaymentMethod),
		AddressID:            order.AddressID,
		DeliverySlotID:       order.DeliverySlotID,
		CouponID:             order.CouponID,
		Subtotal:             order.Subtotal,
		DeliveryFee:          order.DeliveryFee,
		DiscountAmount:       order.DiscountAmount,
		TotalAmount:          order.TotalAmount,
		PointsEarned:         order.PointsEarned,
		DeliveryAddress:      order.DeliveryAddress,
		DeliveryInstructions: order.DeliveryInstructions,
		Items:                make([]OrderItemDTO, 0, len(order.Items)),
		Timeline:             make([]TrackingEventDTO, 0, len(order.TrackingEvents)),
		CreatedAt:            order.CreatedAt,
		UpdatedAt:            order.UpdatedAt,
	}
	for _, item := range order.Items {
		detail.Items = append(detail.Items, OrderItemDTO{
			ID:            item.ID,
			ProductID:     item.ProductID,
			VariationID:   item.VariationID,
			ProductName:   item.ProductName,
			VariationName: item.VariationName,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			TotalPrice:    item.TotalPrice,
		})
	}
	for _, event := range order.TrackingEvents {
		detail.Timeline = append(detail.Timeline, TrackingEventDTO{
			Status:    string(event.Status),
			Note:      event.Note,
			CreatedAt: event.CreatedAt,
		})
	}
	return detail
}

func toSummary(order models.Order) OrderSummary {
	count := 0
	for _, item := range order.Items {
		count += item.Quantity
	}
	return OrderSummary{
		ID:             order.ID,
		Status:         string(order.Status),
		DeliverySlotID: order.DeliverySlotID,
		ItemCount:      count,
		TotalAmount:    order.TotalAmount,
		PointsEarned:   order.PointsEarned,
		CreatedAt:      order.CreatedAt,
	}
}
