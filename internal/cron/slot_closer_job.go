package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/freshcart-backend/pkg/logger"
)

type slotCloser interface {
	CloseEnded(ctx context.Context, now time.Time) (int64, error)
}

type SlotCloserJobParams struct {
	Logger *logger.Logger
	Slots  slotCloser
}

// NewSlotCloserJob marks delivery slots whose window has passed as unavailable.
func NewSlotCloserJob(params SlotCloserJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Slots == nil {
		return nil, fmt.Errorf("slots repository required")
	}
	return &slotCloserJob{logg: params.Logger, slots: params.Slots, now: time.Now}, nil
}

type slotCloserJob struct {
	logg  *logger.Logger
	slots slotCloser
	now   func() time.Time
}

func (j *slotCloserJob) Name() string { return "slot-closer" }

func (j *slotCloserJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	closed, err := j.slots.CloseEnded(ctx, now)
	if err != nil {
		return fmt.Errorf("close ended slots: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "slots_closed", closed), "slot closer complete")
	return nil
}
