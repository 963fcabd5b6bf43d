package events

import (
	"context"
	"fmt"

	"ayah/internal/mailer"

	"go.uber.org/zap"
)

// ConfirmationHandler mails a receipt to the address recorded on each placed order.
type ConfirmationHandler struct {
	mailer mailer.Mailer
	from   string
	logger *zap.Logger
}

func NewConfirmationHandler(m mailer.Mailer, from string, logger *zap.Logger) *ConfirmationHandler {
	return &ConfirmationHandler{mailer: m, from: from, logger: logger}
}

// Handle implements Handler. Orders without a deliverable mailer are skipped.
func (h *ConfirmationHandler) Handle(ctx context.Context, ev OrderPlaced) error {
	if !mailer.Configured(h.mailer) {
		h.logger.Debug("Skipping order confirmation, no mail provider", zap.String("order_id", ev.Order.OrderID))
		return nil
	}

	msg, err := mailer.OrderConfirmationMessage(&ev.Order, h.from)
	if err != nil {
		return err
	}
	if err := h.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send confirmation for %s: %w", ev.Order.OrderID, err)
	}
	h.logger.Info("Order confirmation sent", zap.String("order_id", ev.Order.OrderID))
	return nil
}
