package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/freshcart-backend/pkg/logger"
)

const (
	defaultTriggerTimeout = 10 * time.Second
	kindOrderConfirmation = "order_confirmation"
)

type dispatchMetrics interface {
	IncNotificationFailure(kind string)
	IncNotificationSuccess(kind string)
}

// Trigger fires the order confirmation after checkout commits. It makes a
// single attempt in the background and never reports failure to the caller.
type Trigger struct {
	dispatcher Dispatcher
	timeout    time.Duration
	logg       *logger.Logger
	metrics    dispatchMetrics
	inflight   sync.WaitGroup
}

// NewTrigger builds a trigger. metrics may be nil.
func NewTrigger(dispatcher Dispatcher, timeout time.Duration, logg *logger.Logger, metrics dispatchMetrics) (*Trigger, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("notification dispatcher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if timeout <= 0 {
		timeout = defaultTriggerTimeout
	}
	return &Trigger{dispatcher: dispatcher, timeout: timeout, logg: logg, metrics: metrics}, nil
}

// Fire dispatches asynchronously. The request context only contributes log
// fields; its cancellation does not abort the dispatch.
func (t *Trigger) Fire(ctx context.Context, orderID uuid.UUID) {
	detached := context.WithoutCancel(ctx)
	t.inflight.Add(1)
	go func() {
		defer t.inflight.Done()
		t.dispatch(detached, orderID)
	}()
}

// Wait blocks until every fired dispatch has finished.
func (t *Trigger) Wait() {
	t.inflight.Wait()
}

func (t *Trigger) dispatch(ctx context.Context, orderID uuid.UUID) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	logCtx := t.logg.WithOrderID(ctx, orderID.String())

	defer func() {
		if r := recover(); r != nil {
			t.logg.Error(logCtx, "order confirmation dispatch panicked", fmt.Errorf("panic: %v", r))
			t.countFailure()
		}
	}()

	if err := t.dispatcher.SendOrderConfirmation(ctx, orderID); err != nil {
		t.logg.Error(logCtx, "order confirmation dispatch failed", err)
		t.countFailure()
		return
	}
	if t.metrics != nil {
		t.metrics.IncNotificationSuccess(kindOrderConfirmation)
	}
	t.logg.Info(logCtx, "order confirmation dispatched")
}

func (t *Trigger) countFailure() {
	if t.metrics != nil {
		t.metrics.IncNotificationFailure(kindOrderConfirmation)
	}
}
