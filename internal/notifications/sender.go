package notifications

import (
	"context"
	"fmt"

	"github.com/angelmondragon/freshcart-backend/pkg/logger"
	"github.com/angelmondragon/freshcart-backend/pkg/sendgrid"
)

// Email is a plain-text message for one recipient.
type Email struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// Sender delivers customer emails.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

type sendgridClient interface {
	Send(ctx context.Context, msg sendgrid.Message) error
}

// SendGridSender delivers mail through the SendGrid v3 API.
type SendGridSender struct {
	client sendgridClient
}

// NewSendGridSender wraps a SendGrid client.
func NewSendGridSender(client sendgridClient) (*SendGridSender, error) {
	if client == nil {
		return nil, fmt.Errorf("sendgrid client required")
	}
	return &SendGridSender{client: client}, nil
}

func (s *SendGridSender) Send(ctx context.Context, email Email) error {
	return s.client.Send(ctx, sendgrid.Message{
		To:      email.To,
		ToName:  email.ToName,
		Subject: email.Subject,
		Body:    email.Body,
	})
}

// LogSender writes emails to the log instead of delivering them. Used when no
// SendGrid key is configured.
type LogSender struct {
	logg *logger.Logger
}

// NewLogSender builds a LogSender.
func NewLogSender(logg *logger.Logger) *LogSender {
	return &LogSender{logg: logg}
}

func (s *LogSender) Send(ctx context.Context, email Email) error {
	if s.logg == nil {
		return nil
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"to":      email.To,
		"subject": email.Subject,
	}), "email delivery skipped, no provider configured")
	return nil
}
