package slots

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/freshcart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/freshcart-backend/pkg/errors"
)

const defaultListLimit = 50

// Service exposes slot browsing and admin management.
type Service interface {
	ListUpcoming(ctx context.Context) ([]SlotDTO, error)
	Create(ctx context.Context, input CreateInput) (*SlotDTO, error)
	SetAvailability(ctx context.Context, slotID uuid.UUID, available bool) (*SlotDTO, error)
}

type service struct {
	repo *Repository
	now  func() time.Time
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("slot repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) ListUpcoming(ctx context.Context) ([]SlotDTO, error) {
	rows, err := s.repo.ListUpcoming(ctx, s.now().UTC(), defaultListLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list delivery slots")
	}
	out := make([]SlotDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*SlotDTO, error) {
	if !input.EndsAt.After(input.StartsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ends_at must be after starts_at")
	}
	if input.MaxOrders <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max_orders must be positive")
	}
	if !input.EndsAt.After(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slot window already ended")
	}

	slot := &models.DeliverySlot{
		StartsAt:    input.StartsAt.UTC(),
		EndsAt:      input.EndsAt.UTC(),
		MaxOrders:   input.MaxOrders,
		IsAvailable: true,
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create delivery slot")
	}
	dto := toDTO(*slot)
	return &dto, nil
}

func (s *service) SetAvailability(ctx context.Context, slotID uuid.UUID, available bool) (*SlotDTO, error) {
	found, err := s.repo.SetAvailability(ctx, slotID, available)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update delivery slot")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery slot not found")
	}
	slot, err := s.repo.Get(ctx, slotID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load delivery slot")
	}
	dto := toDTO(*slot)
	return &dto, nil
}
