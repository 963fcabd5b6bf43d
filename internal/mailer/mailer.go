// Package mailer relays messages through a transactional email API.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"ayah/internal/config"
	"ayah/pkg/outbound"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned by Send when no provider key is set.
var ErrNotConfigured = errors.New("email service not configured, set RESEND_API_KEY or SENDGRID_API_KEY")

// Message is one outgoing email.
type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends a Message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

// ProviderError is a non-2xx answer from the email API.
type ProviderError struct {
	Provider string
	Status   int
	Body     string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s error: %d %s", e.Provider, e.Status, e.Body)
}

// Select picks Resend when its key is set, then SendGrid, else a mailer that always fails with
// ErrNotConfigured.
func Select(cfg *config.Config, client *outbound.Client, logger *zap.Logger) Mailer {
	switch {
	case cfg.ResendAPIKey != "":
		logger.Info("Mail provider selected", zap.String("provider", "resend"))
		return NewResend(cfg.ResendBaseURL, cfg.ResendAPIKey, client)
	case cfg.SendGridAPIKey != "":
		logger.Info("Mail provider selected", zap.String("provider", "sendgrid"))
		return NewSendGrid(cfg.SendGridBaseURL, cfg.SendGridAPIKey, client)
	default:
		logger.Warn("No mail provider configured, contact relay will fail")
		return Unconfigured{}
	}
}

// Configured reports whether m can actually deliver mail.
func Configured(m Mailer) bool {
	_, none := m.(Unconfigured)
	return m != nil && !none
}

// Unconfigured rejects every message.
type Unconfigured struct{}

func (Unconfigured) Send(context.Context, Message) error { return ErrNotConfigured }

func (Unconfigured) Name() string { return "none" }
