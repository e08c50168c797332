package rabbitmq

import (
	"context"
	"fmt"

	"github.com/devicenanny/notifier/internal/config"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/fx"
)

// NewConnection creates and returns a raw amqp.Connection.
// The connection is closed when the Fx application stops.
func NewConnection(cfg *config.Config, lc fx.Lifecycle) (*amqp.Connection, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: failed to connect: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return conn.Close()
		},
	})
	return conn, nil
}
