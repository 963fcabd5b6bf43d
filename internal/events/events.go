// Package events publishes and consumes order events.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"ayah/internal/models"
)

// TypeOrderPlaced is emitted once a simulated checkout has recorded its order.
const TypeOrderPlaced = "order.placed"

// OrderPlaced is the wire format of the event.
type OrderPlaced struct {
	Type  string       `json:"type"`
	Order models.Order `json:"order"`
}

// Publisher announces placed orders.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, order *models.Order) error
}

// Handler processes one decoded event.
type Handler func(ctx context.Context, ev OrderPlaced) error

// Subscriber delivers events to a Handler until the broker connection closes.
type Subscriber interface {
	SubscribeOrderPlaced(handler Handler) error
}

// Bus is a broker connection that can both publish and subscribe.
type Bus interface {
	Publisher
	Subscriber
	Close() error
}

// Encode serializes an order.placed event.
func Encode(order *models.Order) ([]byte, error) {
	body, err := json.Marshal(OrderPlaced{Type: TypeOrderPlaced, Order: *order})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order event: %w", err)
	}
	return body, nil
}

// Decode parses an event body, rejecting other event types.
func Decode(body []byte) (OrderPlaced, error) {
	var ev OrderPlaced
	if err := json.Unmarshal(body, &ev); err != nil {
		return OrderPlaced{}, fmt.Errorf("failed to unmarshal order event: %w", err)
	}
	if ev.Type != TypeOrderPlaced {
		return OrderPlaced{}, fmt.Errorf("unexpected event type %q", ev.Type)
	}
	return ev, nil
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) PublishOrderPlaced(context.Context, *models.Order) error { return nil }

func (Noop) SubscribeOrderPlaced(Handler) error { return nil }

func (Noop) Close() error { return nil }
