package events

import (
	"context"

	"ayah/internal/models"
	"ayah/pkg/rabbitmq"

	"go.uber.org/zap"
)

// RabbitMQBus carries events over a durable RabbitMQ queue.
type RabbitMQBus struct {
	client *rabbitmq.Client
	logger *zap.Logger
}

// NewRabbitMQBus connects to url and declares the order queue.
func NewRabbitMQBus(url string, logger *zap.Logger) (*RabbitMQBus, error) {
	client, err := rabbitmq.NewClient(rabbitmq.Config{URL: url, Queue: rabbitmq.DefaultQueue}, logger)
	if err != nil {
		return nil, err
	}
	return &RabbitMQBus{client: client, logger: logger}, nil
}

func (b *RabbitMQBus) PublishOrderPlaced(ctx context.Context, order *models.Order) error {
	body, err := Encode(order)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, body)
}

func (b *RabbitMQBus) SubscribeOrderPlaced(handler Handler) error {
	return b.client.Consume(func(body []byte) error {
		ev, err := Decode(body)
		if err != nil {
			return err
		}
		return handler(context.Background(), ev)
	})
}

func (b *RabbitMQBus) Close() error {
	return b.client.Close()
}
