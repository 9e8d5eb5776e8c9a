package address

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/freshcart-backend/pkg/db/models"
)

// CreateInput is the payload for saving a delivery address.
type CreateInput struct {
	Label         string  `json:"label" validate:"required,max=50"`
	RecipientName string  `json:"recipient_name" validate:"required,max=120"`
	Phone         *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Line1         string  `json:"line1" validate:"required,max=200"`
	Line2         *string `json:"line2,omitempty" validate:"omitempty,max=200"`
	City          string  `json:"city" validate:"required,max=100"`
	State         string  `json:"state" validate:"required,max=100"`
	PostalCode    string  `json:"postal_code" validate:"required,max=20"`
	Country       string  `json:"country" validate:"required,len=2"`
	IsDefault     bool    `json:"is_default"`
}

func (in CreateInput) toModel(userID uuid.UUID) *models.Address {
	return &models.Address{
		UserID:        userID,
		Label:         strings.TrimSpace(in.Label),
		RecipientName: strings.TrimSpace(in.RecipientName),
		Phone:         in.Phone,
		Line1:         strings.TrimSpace(in.Line1),
		Line2:         in.Line2,
		City:          strings.TrimSpace(in.City),
		State:         strings.TrimSpace(in.State),
		PostalCode:    strings.TrimSpace(in.PostalCode),
		Country:       strings.ToUpper(strings.TrimSpace(in.Country)),
		IsDefault:     in.IsDefault,
	}
}

// AddressDTO is the client-facing address shape.
type AddressDTO struct {
	ID            uuid.UUID `json:"id"`
	Label         string    `json:"label"`
	RecipientName string    `json:"recipient_name"`
	Phone         *string   `json:"phone,omitempty"`
	Line1         string    `json:"line1"`
	Line2         *string   `json:"line2,omitempty"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	PostalCode    string    `json:"postal_code"`
	Country       string    `json:"country"`
	IsDefault     bool      `json:"is_default"`
	CreatedAt     time.Time `json:"created_at"`
}

func toDTO(addr models.Address) AddressDTO {
	return AddressDTO{
		ID:            addr.ID,
		Label:         addr.Label,
		RecipientName: addr.RecipientName,
		Phone:         addr.Phone,
		Line1:         addr.Line1,
		Line2:         addr.Line2,
		City:          addr.City,
		State:         addr.State,
		PostalCode:    addr.PostalCode,
		Country:       addr.Country,
		IsDefault:     addr.IsDefault,
		CreatedAt:     addr.CreatedAt,
	}
}
