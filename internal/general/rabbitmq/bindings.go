package rabbitmq

import (
	"fmt"

	"ride-share/internal/general/contracts"

	amqp "github.com/rabbitmq/amqp091-go"
)

// binding is one queue bound to an exchange.
type binding struct {
	queue      string
	exchange   string
	routingKey string
}

// topology lists what declareTopology creates. Every notification type lands in the
// single notifications queue consumed by the notification service.
var topology = struct {
	exchanges []struct{ name, kind string }
	queues    []string
	bindings  []binding
}{
	exchanges: []struct{ name, kind string }{
		{contracts.ExchangeNotificationTopic, "topic"},
	},
	queues: []string{
		contracts.QueueNotifications,
	},
	bindings: []binding{
		{contracts.QueueNotifications, contracts.ExchangeNotificationTopic, contracts.RouteNotificationPrefix + "*"},
	},
}

func declareTopology(ch *amqp.Channel) error {
	// 1. Exchanges
	for _, ex := range topology.exchanges {
		if err := ch.ExchangeDeclare(ex.name, ex.kind, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	// 2. Queues
	for _, q := range topology.queues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
	}

	// 3. Bindings
	for _, b := range topology.bindings {
		if err := ch.QueueBind(b.queue, b.routingKey, b.exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}
