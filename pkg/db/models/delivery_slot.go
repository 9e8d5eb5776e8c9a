package models

import (
	"time"

	"github.com/google/uuid"
)

// DeliverySlot is a bookable delivery window with finite order capacity.
type DeliverySlot struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StartsAt      time.Time `gorm:"column:starts_at;type:timestamptz;not null"`
	EndsAt        time.Time `gorm:"column:ends_at;type:timestamptz;not null"`
	MaxOrders     int       `gorm:"column:max_orders;not null"`
	CurrentOrders int       `gorm:"column:current_orders;not null;default:0"`
	IsAvailable   bool      `gorm:"column:is_available;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// HasCapacity reports whether the slot can take another order.
func (s DeliverySlot) HasCapacity() bool {
	return s.IsAvailable && s.CurrentOrders < s.MaxOrders
}
