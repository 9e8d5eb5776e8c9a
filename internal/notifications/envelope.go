package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventOrderConfirmationRequested asks the worker to confirm a placed order to its customer.
const EventOrderConfirmationRequested = "order_confirmation_requested"

const envelopeVersion = 1

// Envelope is the JSON body of every notification message on the topic.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    uuid.UUID       `json:"eventId"`
	EventType  string          `json:"eventType"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// OrderConfirmationRequested is the payload of EventOrderConfirmationRequested.
type OrderConfirmationRequested struct {
	OrderID uuid.UUID `json:"orderId"`
}

func newEnvelope(eventType string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Version:    envelopeVersion,
		EventID:    uuid.New(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	}, nil
}
