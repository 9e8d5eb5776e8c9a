package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
)

type stubResult struct {
	id  string
	err error
}

func (r stubResult) Get(context.Context) (string, error) { return r.id, r.err }

type stubPublisher struct {
	messages []*gcppubsub.Message
	err      error
}

func (p *stubPublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	p.messages = append(p.messages, msg)
	return stubResult{id: "server-id", err: p.err}
}

func TestPubSubDispatcherPublishesEnvelope(t *testing.T) {
	pub := &stubPublisher{}
	d := &PubSubDispatcher{publisher: pub}

	orderID := uuid.New()
	if err := d.SendOrderConfirmation(context.Background(), orderID); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(pub.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(pub.messages))
	}
	msg := pub.messages[0]
	if msg.Attributes["event_type"] != EventOrderConfirmationRequested {
		t.Fatalf("unexpected event_type %q", msg.Attributes["event_type"])
	}

	var envelope Envelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.EventID.String() != msg.Attributes["event_id"] {
		t.Fatalf("event id attribute mismatch")
	}
	var payload OrderConfirmationRequested
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.OrderID != orderID {
		t.Fatalf("expected order %s, got %s", orderID, payload.OrderID)
	}
}

func TestPubSubDispatcherReturnsPublishError(t *testing.T) {
	d := &PubSubDispatcher{publisher: &stubPublisher{err: errors.New("unavailable")}}
	if err := d.SendOrderConfirmation(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected publish error")
	}
}

func TestPubSubDispatcherRejectsNilOrder(t *testing.T) {
	d := &PubSubDispatcher{publisher: &stubPublisher{}}
	if err := d.SendOrderConfirmation(context.Background(), uuid.Nil); err == nil {
		t.Fatal("expected error for nil order id")
	}
}
