package slots

import (
	"github.com/angelmondragon/freshcart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/freshcart-backend/pkg/errors"
)

// ErrSlotUnavailable is returned when a slot is closed, full, or unknown.
var ErrSlotUnavailable = pkgerrors.New(pkgerrors.CodeSlotUnavailable, "delivery slot unavailable")

// Validate rejects slots that are closed or already at capacity.
func Validate(slot *models.DeliverySlot) error {
	if slot == nil || !slot.HasCapacity() {
		return ErrSlotUnavailable
	}
	return nil
}
