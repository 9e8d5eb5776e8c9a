package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/freshcart-backend/pkg/logger"
)

const (
	defaultLoyaltyExpiryBatch = 500
	// bounds a single run so a large backlog drains over several cycles
	maxLoyaltyExpiryBatches = 20
)

type loyaltyExpirer interface {
	ExpireDue(ctx context.Context, now time.Time, batch int) (int, error)
}

type LoyaltyExpiryJobParams struct {
	Logger    *logger.Logger
	Loyalty   loyaltyExpirer
	BatchSize int
}

// NewLoyaltyExpiryJob writes expired ledger entries for earned points past their expiry.
func NewLoyaltyExpiryJob(params LoyaltyExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Loyalty == nil {
		return nil, fmt.Errorf("loyalty service required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultLoyaltyExpiryBatch
	}
	return &loyaltyExpiryJob{
		logg:    params.Logger,
		loyalty: params.Loyalty,
		batch:   batch,
		now:     time.Now,
	}, nil
}

type loyaltyExpiryJob struct {
	logg    *logger.Logger
	loyalty loyaltyExpirer
	batch   int
	now     func() time.Time
}

func (j *loyaltyExpiryJob) Name() string { return "loyalty-expiry" }

func (j *loyaltyExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	total := 0
	for i := 0; i < maxLoyaltyExpiryBatches; i++ {
		expired, err := j.loyalty.ExpireDue(ctx, now, j.batch)
		total += expired
		if err != nil {
			return fmt.Errorf("expire loyalty points: %w", err)
		}
		if expired < j.batch {
			break
		}
	}
	j.logg.Info(j.logg.WithField(ctx, "entries_expired", total), "loyalty expiry complete")
	return nil
}
