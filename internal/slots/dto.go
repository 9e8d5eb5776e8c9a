package slots

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/freshcart-backend/pkg/db/models"
)

// CreateInput is the admin payload for opening a delivery window.
type CreateInput struct {
	StartsAt  time.Time `json:"starts_at" validate:"required"`
	EndsAt    time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
	MaxOrders int       `json:"max_orders" validate:"required,min=1,max=1000"`
}

// AvailabilityInput toggles whether a slot accepts orders.
type AvailabilityInput struct {
	IsAvailable *bool `json:"is_available" validate:"required"`
}

// SlotDTO is a delivery window as exposed to clients.
type SlotDTO struct {
	ID            uuid.UUID `json:"id"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	MaxOrders     int       `json:"max_orders"`
	CurrentOrders int       `json:"current_orders"`
	Remaining     int       `json:"remaining"`
	IsAvailable   bool      `json:"is_available"`
}

func toDTO(slot models.DeliverySlot) SlotDTO {
	remaining := slot.MaxOrders - slot.CurrentOrders
	if remaining < 0 {
		remaining = 0
	}
	return SlotDTO{
		ID:            slot.ID,
		StartsAt:      slot.StartsAt,
		EndsAt:        slot.EndsAt,
		MaxOrders:     slot.MaxOrders,
		CurrentOrders: slot.CurrentOrders,
		Remaining:     remaining,
		IsAvailable:   slot.IsAvailable,
	}
}
