package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/angelmondragon/freshcart-backend/pkg/db"
	"github.com/angelmondragon/freshcart-backend/pkg/db/models"
	"github.com/angelmondragon/freshcart-backend/pkg/enums"
	"github.com/angelmondragon/freshcart-backend/pkg/logger"
)

const orderConfirmationConsumer = "order-confirmation"

type orderLoader interface {
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type claimer interface {
	Claim(ctx context.Context, consumer string, messageID uuid.UUID) (bool, error)
	Release(ctx context.Context, consumer string, messageID uuid.UUID) error
}

type inboxWriter interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer turns order confirmation requests into an email and an inbox entry.
type Consumer struct {
	orders       orderLoader
	users        userLoader
	inbox        inboxWriter
	sender       Sender
	guard        claimer
	subscription *gcppubsub.Subscriber
	logg         *logger.Logger
}

// ConsumerParams groups the consumer collaborators.
type ConsumerParams struct {
	Orders       orderLoader
	Users        userLoader
	Inbox        inboxWriter
	Sender       Sender
	Guard        claimer
	Subscription *gcppubsub.Subscriber
	Logger       *logger.Logger
}

// NewConsumer builds an order confirmation consumer.
func NewConsumer(params ConsumerParams) (*Consumer, error) {
	switch {
	case params.Orders == nil:
		return nil, fmt.Errorf("orders repository required")
	case params.Users == nil:
		return nil, fmt.Errorf("users repository required")
	case params.Inbox == nil:
		return nil, fmt.Errorf("notifications repository required")
	case params.Sender == nil:
		return nil, fmt.Errorf("email sender required")
	case params.Guard == nil:
		return nil, fmt.Errorf("idempotency guard required")
	case params.Subscription == nil:
		return nil, fmt.Errorf("notification subscription required")
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		orders:       params.Orders,
		users:        params.Users,
		inbox:        params.Inbox,
		sender:       params.Sender,
		guard:        params.Guard,
		subscription: params.Subscription,
		logg:         params.Logger,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *gcppubsub.Message) {
		if c.process(ctx, msg.ID, msg.Attributes, msg.Data).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, messageID string, attrs map[string]string, data []byte) processResult {
	eventType := attrs["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": messageID,
		"event_type": eventType,
	})

	if eventType != EventOrderConfirmationRequested {
		c.logg.Info(logCtx, "skipping unhandled event")
		return processResult{ack: true}
	}

	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}
	if envelope.EventID == uuid.Nil {
		c.logg.Error(logCtx, "invalid event id", fmt.Errorf("event id missing"))
		return processResult{ack: true}
	}

	var payload OrderConfirmationRequested
	if err := json.Unmarshal(envelope.Data, &payload); err != nil || payload.OrderID == uuid.Nil {
		if err == nil {
			err = fmt.Errorf("order id missing")
		}
		c.logg.Error(logCtx, "failed to parse payload", err)
		return processResult{ack: true}
	}
	logCtx = c.logg.WithOrderID(logCtx, payload.OrderID.String())

	first, err := c.guard.Claim(ctx, orderConfirmationConsumer, envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if !first {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.confirm(ctx, payload.OrderID); err != nil {
		c.logg.Error(logCtx, "order confirmation failed", err)
		if relErr := c.guard.Release(ctx, orderConfirmationConsumer, envelope.EventID); relErr != nil {
			c.logg.Error(logCtx, "failed to release idempotency claim", relErr)
		}
		return processResult{nack: true}
	}

	c.logg.Info(logCtx, "order confirmation delivered")
	return processResult{ack: true}
}

func (c *Consumer) confirm(ctx context.Context, orderID uuid.UUID) error {
	order, err := c.orders.FindByID(ctx, orderID)
	if err != nil {
		if db.IsNotFound(err) {
			c.logg.Warn(c.logg.WithOrderID(ctx, orderID.String()), "order for confirmation not found")
			return nil
		}
		return fmt.Errorf("load order: %w", err)
	}
	user, err := c.users.FindByID(ctx, order.UserID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	// The inbox row is unique per order and written before the email, so a
	// redelivery after a failed send only retries the email.
	id := order.ID
	link := orderLink(order.ID)
	err = c.inbox.Create(ctx, &models.Notification{
		UserID:  order.UserID,
		OrderID: &id,
		Type:    enums.NotificationTypeOrderConfirmed,
		Title:   "Order confirmed",
		Message: fmt.Sprintf("Order %s is confirmed. Total %s.", shortID(order.ID), order.TotalAmount.StringFixed(2)),
		Link:    &link,
	})
	if err != nil && !db.IsUniqueViolation(err, "") {
		return fmt.Errorf("write inbox notification: %w", err)
	}

	if err := c.sender.Send(ctx, confirmationEmail(user, order)); err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	return nil
}

func confirmationEmail(user *models.User, order *models.Order) Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", user.FirstName)
	fmt.Fprintf(&b, "Thanks for your order %s.\n\n", order.ID)
	for _, item := range order.Items {
		name := item.ProductName
		if item.VariationName != nil && *item.VariationName != "" {
			name = fmt.Sprintf("%s (%s)", name, *item.VariationName)
		}
		fmt.Fprintf(&b, "  %d x %s  %s\n", item.Quantity, name, item.TotalPrice.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\n", order.Subtotal.StringFixed(2))
	if order.DiscountAmount.IsPositive() {
		fmt.Fprintf(&b, "Discount: -%s\n", order.DiscountAmount.StringFixed(2))
	}
	fmt.Fprintf(&b, "Delivery: %s\n", order.DeliveryFee.StringFixed(2))
	fmt.Fprintf(&b, "Total: %s\n", order.TotalAmount.StringFixed(2))
	if order.PointsEarned > 0 {
		fmt.Fprintf(&b, "\nYou earned %d loyalty points.\n", order.PointsEarned)
	}
	fmt.Fprintf(&b, "\nDelivering to:\n%s\n", order.DeliveryAddress)

	return Email{
		To:      user.Email,
		ToName:  user.FullName(),
		Subject: fmt.Sprintf("Your FreshCart order %s is confirmed", shortID(order.ID)),
		Body:    b.String(),
	}
}
