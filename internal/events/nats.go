package events

import (
	"context"
	"fmt"

	"ayah/internal/models"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// SubjectOrderPlaced is the NATS subject for order events.
const SubjectOrderPlaced = "orders.placed"

// NATSBus carries events over core NATS.
type NATSBus struct {
	conn   *nats.Conn
	logger *zap.Logger
}

// NewNATSBus connects to url.
func NewNATSBus(url string, logger *zap.Logger) (*NATSBus, error) {
	conn, err := nats.Connect(url,
		nats.Name("ayah"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.Info("NATS client connected", zap.String("subject", SubjectOrderPlaced))
	return &NATSBus{conn: conn, logger: logger}, nil
}

func (b *NATSBus) PublishOrderPlaced(ctx context.Context, order *models.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := Encode(order)
	if err != nil {
		return err
	}
	if err := b.conn.Publish(SubjectOrderPlaced, body); err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}
	return nil
}

func (b *NATSBus) SubscribeOrderPlaced(handler Handler) error {
	_, err := b.conn.Subscribe(SubjectOrderPlaced, func(msg *nats.Msg) {
		ev, err := Decode(msg.Data)
		if err != nil {
			b.logger.Error("Failed to decode order event", zap.Error(err))
			return
		}
		if err := handler(context.Background(), ev); err != nil {
			b.logger.Error("Failed to handle order event", zap.String("order_id", ev.Order.OrderID), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", SubjectOrderPlaced, err)
	}
	return nil
}

func (b *NATSBus) Close() error {
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}
	return nil
}
