package services

import (
	"context"
	"errors"
	"fmt"

	"ayah/internal/mailer"
	"ayah/internal/models"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ErrRelayFailed wraps any mail provider failure, including a missing provider.
var ErrRelayFailed = errors.New("email service not configured or failed")

// ContactService validates form submissions and relays them to the site's inbox.
type ContactService struct {
	mailer   mailer.Mailer
	from     string
	to       string
	validate *validator.Validate
	logger   *zap.Logger
}

// NewContactService creates a ContactService sending from `from` to `to`.
func NewContactService(m mailer.Mailer, from, to string, logger *zap.Logger) *ContactService {
	return &ContactService{
		mailer:   m,
		from:     from,
		to:       to,
		validate: NewValidator(),
		logger:   logger,
	}
}

// Relay forwards a contact form. It returns a *ValidationError for bad input and wraps
// ErrRelayFailed when the email could not be sent. Nothing is retried.
func (s *ContactService) Relay(ctx context.Context, req models.ContactRequest) error {
	if err := validateStruct(s.validate, req); err != nil {
		return err
	}
	msg, err := mailer.ContactMessage(req, s.from, s.to)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRelayFailed, err)
	}
	return s.send(ctx, msg)
}

// RequestTrial forwards a free-trial request.
func (s *ContactService) RequestTrial(ctx context.Context, req models.TrialRequest) error {
	if err := validateStruct(s.validate, req); err != nil {
		return err
	}
	msg, err := mailer.TrialMessage(req, s.from, s.to)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRelayFailed, err)
	}
	return s.send(ctx, msg)
}

func (s *ContactService) send(ctx context.Context, msg mailer.Message) error {
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("Failed to relay message",
			zap.String("provider", s.mailer.Name()),
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return fmt.Errorf("%w: %v", ErrRelayFailed, err)
	}
	s.logger.Info("Message relayed", zap.String("provider", s.mailer.Name()), zap.String("subject", msg.Subject))
	return nil
}
