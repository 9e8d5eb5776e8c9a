package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/freshcart-backend/pkg/db/dbtest"
	"github.com/angelmondragon/freshcart-backend/pkg/db/models"
	"github.com/angelmondragon/freshcart-backend/pkg/enums"
	"github.com/angelmondragon/freshcart-backend/pkg/logger"
)

type stubOrders struct {
	order *models.Order
	err   error
}

func (s stubOrders) FindByID(context.Context, uuid.UUID) (*models.Order, error) {
	return s.order, s.err
}

type stubUsers struct {
	user *models.User
}

func (s stubUsers) FindByID(context.Context, uuid.UUID) (*models.User, error) {
	return s.user, nil
}

// memoryInbox mirrors the unique order_confirmed index of the notifications table.
type memoryInbox struct {
	created  []*models.Notification
	failures int
}

func (m *memoryInbox) Create(_ context.Context, n *models.Notification) error {
	if m.failures > 0 {
		m.failures--
		return errors.New("connection reset by peer")
	}
	for _, existing := range m.created {
		if n.OrderID != nil && existing.OrderID != nil && *existing.OrderID == *n.OrderID && existing.Type == n.Type {
			return errors.New("UNIQUE constraint failed: notifications.order_id")
		}
	}
	m.created = append(m.created, n)
	return nil
}

type recordingSender struct {
	sent     []Email
	failures int
}

func (s *recordingSender) Send(_ context.Context, email Email) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("provider down")
	}
	s.sent = append(s.sent, email)
	return nil
}

type memoryGuard struct {
	claimed  map[uuid.UUID]bool
	released int
}

func (g *memoryGuard) Claim(_ context.Context, _ string, id uuid.UUID) (bool, error) {
	if g.claimed[id] {
		return false, nil
	}
	g.claimed[id] = true
	return true, nil
}

func (g *memoryGuard) Release(_ context.Context, _ string, id uuid.UUID) error {
	delete(g.claimed, id)
	g.released++
	return nil
}

type consumerFixture struct {
	consumer *Consumer
	sender   *recordingSender
	inbox    *memoryInbox
	guard    *memoryGuard
	order    *models.Order
}

func newConsumerFixture(t *testing.T, orderErr error) *consumerFixture {
	t.Helper()
	variation := "1kg"
	order := &models.Order{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		Status:          enums.OrderStatusConfirmed,
		Subtotal:        decimal.NewFromInt(250),
		DeliveryFee:     decimal.Zero,
		DiscountAmount:  decimal.Zero,
		TotalAmount:     decimal.NewFromInt(250),
		PointsEarned:    2,
		DeliveryAddress: "Asha Rao\n12 Lake Road\nPune, MH 411001\nIN",
		Items: []models.OrderItem{{
			ProductName:   "Basmati Rice",
			VariationName: &variation,
			Quantity:      2,
			UnitPrice:     decimal.NewFromInt(125),
			TotalPrice:    decimal.NewFromInt(250),
		}},
	}
	user := &models.User{ID: order.UserID, Email: "asha@example.com", FirstName: "Asha", LastName: "Rao"}

	f := &consumerFixture{
		sender: &recordingSender{},
		inbox:  &memoryInbox{},
		guard:  &memoryGuard{claimed: map[uuid.UUID]bool{}},
		order:  order,
	}
	f.consumer = &Consumer{
		orders: stubOrders{order: order, err: orderErr},
		users:  stubUsers{user: user},
		inbox:  f.inbox,
		sender: f.sender,
		guard:  f.guard,
		logg:   logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}}),
	}
	return f
}

func confirmationMessage(t *testing.T, orderID uuid.UUID) (map[string]string, []byte) {
	t.Helper()
	envelope, err := newEnvelope(EventOrderConfirmationRequested, OrderConfirmationRequested{OrderID: orderID})
	if err != nil {
		t.Fatalf("envelope: %v", err)
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return map[string]string{"event_type": EventOrderConfirmationRequested}, data
}

func TestConsumerSendsConfirmationOnce(t *testing.T) {
	f := newConsumerFixture(t, nil)
	attrs, data := confirmationMessage(t, f.order.ID)

	if res := f.consumer.process(context.Background(), "m1", attrs, data); !res.ack {
		t.Fatalf("expected ack, got %+v", res)
	}
	if res := f.consumer.process(context.Background(), "m1", attrs, data); !res.ack {
		t.Fatalf("expected ack on redelivery, got %+v", res)
	}

	if len(f.sender.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(f.sender.sent))
	}
	email := f.sender.sent[0]
	if email.To != "asha@example.com" {
		t.Fatalf("unexpected recipient %q", email.To)
	}
	for _, want := range []string{"2 x Basmati Rice (1kg)", "Total: 250.00", "You earned 2 loyalty points"} {
		if !strings.Contains(email.Body, want) {
			t.Fatalf("email body missing %q:\n%s", want, email.Body)
		}
	}
	if len(f.inbox.created) != 1 || f.inbox.created[0].Type != enums.NotificationTypeOrderConfirmed {
		t.Fatalf("expected one order_confirmed notification, got %+v", f.inbox.created)
	}
}

func TestConsumerRetriesOnlyEmailAfterSendFailure(t *testing.T) {
	f := newConsumerFixture(t, nil)
	f.sender.failures = 1
	attrs, data := confirmationMessage(t, f.order.ID)

	if res := f.consumer.process(context.Background(), "m1", attrs, data); !res.nack {
		t.Fatalf("expected nack, got %+v", res)
	}
	if f.guard.released != 1 || len(f.guard.claimed) != 0 {
		t.Fatalf("expected claim released, got released=%d claimed=%d", f.guard.released, len(f.guard.claimed))
	}

	if res := f.consumer.process(context.Background(), "m1", attrs, data); !res.ack {
		t.Fatalf("expected ack on redelivery, got %+v", res)
	}
	if len(f.sender.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(f.sender.sent))
	}
	if len(f.inbox.created) != 1 {
		t.Fatalf("expected one inbox entry, got %d", len(f.inbox.created))
	}
}

func TestConsumerSendsNoEmailWhenInboxWriteFails(t *testing.T) {
	f := newConsumerFixture(t, nil)
	f.inbox.failures = 1
	attrs, data := confirmationMessage(t, f.order.ID)

	if res := f.consumer.process(context.Background(), "m1", attrs, data); !res.nack {
		t.Fatalf("expected nack, got %+v", res)
	}
	if len(f.sender.sent) != 0 {
		t.Fatalf("expected no email before the inbox write succeeds, got %d", len(f.sender.sent))
	}

	if res := f.consumer.process(context.Background(), "m1", attrs, data); !res.ack {
		t.Fatalf("expected ack on redelivery, got %+v", res)
	}
	if len(f.sender.sent) != 1 || len(f.inbox.created) != 1 {
		t.Fatalf("expected one email and one inbox entry, got %d and %d", len(f.sender.sent), len(f.inbox.created))
	}
}

func TestConsumerToleratesExistingInboxRow(t *testing.T) {
	f := newConsumerFixture(t, nil)
	inbox := NewRepository(dbtest.Open(t))
	f.consumer.inbox = inbox
	f.sender.failures = 1
	attrs, data := confirmationMessage(t, f.order.ID)

	f.consumer.process(context.Background(), "m1", attrs, data)
	if res := f.consumer.process(context.Background(), "m1", attrs, data); !res.ack {
		t.Fatalf("expected ack on redelivery, got %+v", res)
	}

	rows, err := inbox.List(context.Background(), listParams{UserID: f.order.UserID, Limit: 10})
	if err != nil {
		t.Fatalf("list inbox: %v", err)
	}
	if len(rows) != 1 || len(f.sender.sent) != 1 {
		t.Fatalf("expected one row and one email, got %d and %d", len(rows), len(f.sender.sent))
	}
}

func TestConsumerAcksMissingOrder(t *testing.T) {
	f := newConsumerFixture(t, gorm.ErrRecordNotFound)
	attrs, data := confirmationMessage(t, f.order.ID)

	if res := f.consumer.process(context.Background(), "m1", attrs, data); !res.ack {
		t.Fatalf("expected ack for missing order, got %+v", res)
	}
	if len(f.sender.sent) != 0 {
		t.Fatal("expected no email for missing order")
	}
}

func TestConsumerSkipsOtherEvents(t *testing.T) {
	f := newConsumerFixture(t, nil)
	res := f.consumer.process(context.Background(), "m1", map[string]string{"event_type": "something_else"}, []byte("{}"))
	if !res.ack {
		t.Fatalf("expected ack, got %+v", res)
	}
	if len(f.guard.claimed) != 0 {
		t.Fatal("expected no claim for skipped event")
	}
}

func TestConsumerAcksMalformedEnvelope(t *testing.T) {
	f := newConsumerFixture(t, nil)
	res := f.consumer.process(context.Background(), "m1", map[string]string{"event_type": EventOrderConfirmationRequested}, []byte("not json"))
	if !res.ack {
		t.Fatalf("expected ack for poison message, got %+v", res)
	}
}
