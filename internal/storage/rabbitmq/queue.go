package rabbitmq

import (
	"context"
	"fmt"

	"github.com/devicenanny/notifier/internal/delivery/wire"
	"github.com/devicenanny/notifier/internal/domain/model"
	repo "github.com/devicenanny/notifier/internal/domain/repository"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Ensure EventQueue implements the repository interface at compile time.
var _ repo.EventQueue = (*EventQueue)(nil)

// Constants for the RabbitMQ topology.
const (
	EventsExchange     = "devicenanny.events"
	NotificationsQueue = "devicenanny.notifications"

	Direct = "direct"
)

// Channel is the subset of *amqp.Channel the topology and publisher need.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// SetupTopology declares the events exchange and the notifications queue.
// Both are non-durable: notifications lost with the broker are not replayed.
func SetupTopology(ch Channel) error {
	if err := ch.ExchangeDeclare(EventsExchange, Direct, false, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", EventsExchange, err)
	}
	if _, err := ch.QueueDeclare(NotificationsQueue, false, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", NotificationsQueue, err)
	}
	if err := ch.QueueBind(NotificationsQueue, "", EventsExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s to exchange %s: %w", NotificationsQueue, EventsExchange, err)
	}
	return nil
}

// EventQueue implements the repository.EventQueue interface. It acts as a PUBLISHER.
type EventQueue struct {
	ch     Channel
	logger zerolog.Logger
}

// NewEventQueue creates a new instance of the EventQueue publisher.
// It receives a shared amqp.Connection to create its own channel.
func NewEventQueue(conn *amqp.Connection, logger *zerolog.Logger) (*EventQueue, error) {
	ch, err := conn.Channel()
	if err != nil {
		logger.Error().Err(err).Msg("storage: rabbitMQ: failed to open a channel")
		return nil, fmt.Errorf("storage: rabbitMQ: failed to open a channel: %w", err)
	}
	return newEventQueue(ch, logger)
}

func newEventQueue(ch Channel, logger *zerolog.Logger) (*EventQueue, error) {
	q := &EventQueue{
		ch:     ch,
		logger: logger.With().Str("component", "rabbitmq_publisher").Logger(),
	}

	q.logger.Info().Msg("setting up rabbitmq topology")
	if err := SetupTopology(ch); err != nil {
		q.logger.Error().Err(err).Msg("storage: rabbitMQ: failed to setup topology")
		return nil, fmt.Errorf("storage: rabbitMQ: failed to setup topology: %w", err)
	}
	return q, nil
}

// Publish sends the event as a transient JSON message. requestID travels in
// the envelope and as the AMQP correlation id.
func (q *EventQueue) Publish(ctx context.Context, requestID string, ev model.Event) error {
	env, err := wire.FromEvent(ev)
	if err != nil {
		return err
	}
	env.ID = requestID

	body, err := env.Encode()
	if err != nil {
		q.logger.Error().Err(err).Str("kind", env.Kind).Msg("failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: requestID,
		Body:          body,
		DeliveryMode:  amqp.Transient,
		Type:          env.Kind,
	}
	if err := q.ch.PublishWithContext(ctx, EventsExchange, "", false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq: publish %s: %w", env.Kind, err)
	}
	return nil
}
