package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/freshcart-backend/pkg/enums"
)

// Order is the immutable header written by checkout. Only Status moves afterwards.
type Order struct {
	ID                   uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID               uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	AddressID            uuid.UUID            `gorm:"column:address_id;type:uuid;not null"`
	DeliverySlotID       uuid.UUID            `gorm:"column:delivery_slot_id;type:uuid;not null"`
	CouponID             *uuid.UUID           `gorm:"column:coupon_id;type:uuid"`
	Status               enums.OrderStatus    `gorm:"column:status;type:order_status;not null"`
	PaymentMethod        enums.PaymentMethod  `gorm:"column:payment_method;type:payment_method;not null"`
	Subtotal             decimal.Decimal      `gorm:"column:subtotal;type:numeric(12,2);not null"`
	DeliveryFee          decimal.Decimal      `gorm:"column:delivery_fee;type:numeric(12,2);not null"`
	DiscountAmount       decimal.Decimal      `gorm:"column:discount_amount;type:numeric(12,2);not null"`
	TotalAmount          decimal.Decimal      `gorm:"column:total_amount;type:numeric(12,2);not null"`
	PointsEarned         int64                `gorm:"column:points_earned;not null;default:0"`
	DeliveryAddress      string               `gorm:"column:delivery_address;type:text;not null"`
	DeliveryInstructions *string              `gorm:"column:delivery_instructions;type:text"`
	Items                []OrderItem          `gorm:"foreignKey:OrderID"`
	TrackingEvents       []OrderTrackingEvent `gorm:"foreignKey:OrderID"`
	CreatedAt            time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem captures the price of a line at the moment the order was placed.
type OrderItem struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	VariationID   *uuid.UUID      `gorm:"column:variation_id;type:uuid"`
	ProductName   string          `gorm:"column:product_name;not null"`
	VariationName *string         `gorm:"column:variation_name"`
	Quantity      int             `gorm:"column:quantity;not null"`
	UnitPrice     decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	TotalPrice    decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// OrderTrackingEvent is one append-only entry of an order timeline.
type OrderTrackingEvent struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	Status    enums.OrderStatus `gorm:"column:status;type:order_status;not null"`
	Note      *string           `gorm:"column:note;type:text"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}
