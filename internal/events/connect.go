package events

import (
	"fmt"

	"ayah/internal/config"

	"go.uber.org/zap"
)

// Connect opens the broker named by cfg.EventBroker.
func Connect(cfg *config.Config, logger *zap.Logger) (Bus, error) {
	switch cfg.EventBroker {
	case config.BrokerNone:
		logger.Info("No event broker configured, order events are dropped")
		return Noop{}, nil
	case config.BrokerRabbitMQ:
		return NewRabbitMQBus(cfg.RabbitMQURL, logger)
	case config.BrokerNATS:
		return NewNATSBus(cfg.NATSURL, logger)
	default:
		return nil, fmt.Errorf("unknown event broker %q", cfg.EventBroker)
	}
}
