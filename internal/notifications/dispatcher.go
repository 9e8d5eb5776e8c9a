package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
)

// Dispatcher hands an order confirmation to the delivery channel.
type Dispatcher interface {
	SendOrderConfirmation(ctx context.Context, orderID uuid.UUID) error
}

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

// PubSubDispatcher publishes confirmation requests for the notification worker.
type PubSubDispatcher struct {
	publisher publisher
}

// NewPubSubDispatcher wraps the notification topic publisher.
func NewPubSubDispatcher(p *gcppubsub.Publisher) (*PubSubDispatcher, error) {
	if p == nil {
		return nil, fmt.Errorf("notification publisher required")
	}
	return &PubSubDispatcher{publisher: &gcpPublisher{Publisher: p}}, nil
}

// SendOrderConfirmation publishes one message and waits for the server ack.
func (d *PubSubDispatcher) SendOrderConfirmation(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return errors.New("order id required")
	}
	envelope, err := newEnvelope(EventOrderConfirmationRequested, OrderConfirmationRequested{OrderID: orderID})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	msg := &gcppubsub.Message{
		Data: body,
		Attributes: map[string]string{
			"event_id":   envelope.EventID.String(),
			"event_type": envelope.EventType,
			"order_id":   orderID.String(),
			"created_at": envelope.OccurredAt.Format(time.RFC3339Nano),
		},
	}
	result := d.publisher.Publish(ctx, msg)
	if result == nil {
		return errors.New("publisher returned nil result")
	}
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish order confirmation: %w", err)
	}
	return nil
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}
