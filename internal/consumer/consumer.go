package consumer

import (
	"context"
	"fmt"
	"sync"

	"github.com/devicenanny/notifier/internal/config"
	"github.com/devicenanny/notifier/internal/delivery/wire"
	"github.com/devicenanny/notifier/internal/domain/model"
	"github.com/devicenanny/notifier/internal/observability/metrics"
	"github.com/devicenanny/notifier/internal/storage/rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// defaultWorkerCount is the number of worker goroutines when the config sets none.
const defaultWorkerCount = 4

// Dispatcher delivers one event. service.Dispatcher implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev model.Event) model.Report
}

// Consumer listens to the notifications queue and dispatches events using a pool of workers.
type Consumer struct {
	logger      zerolog.Logger
	conn        *amqp.Connection // Raw connection to create channels for each worker.
	dispatcher  Dispatcher
	workerCount int
}

// New creates a new instance of Consumer.
func New(cfg *config.Config, logger *zerolog.Logger, conn *amqp.Connection, dispatcher Dispatcher) *Consumer {
	workers := cfg.RabbitMQ.Workers
	if workers <= 0 {
		workers = defaultWorkerCount
	}
	return &Consumer{
		logger:      logger.With().Str("component", "consumer").Logger(),
		conn:        conn,
		dispatcher:  dispatcher,
		workerCount: workers,
	}
}

// Start launches the worker pool to process messages from the queue.
// This is a blocking method that will run until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	c.logger.Info().Int("count", c.workerCount).Msg("Starting worker pool")
	var wg sync.WaitGroup

	for i := 0; i < c.workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.runWorker(ctx, workerID)
		}(i + 1)
	}

	wg.Wait()
	c.logger.Info().Msg("Consumer stopped")
}

// runWorker contains the main logic for a single worker goroutine.
func (c *Consumer) runWorker(ctx context.Context, workerID int) {
	logger := c.logger.With().Int("worker_id", workerID).Logger()
	logger.Info().Msg("Worker started")

	ch, err := c.conn.Channel()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open channel for worker")
		return
	}
	defer ch.Close()

	if err := rabbitmq.SetupTopology(ch); err != nil {
		logger.Error().Err(err).Msg("Failed to declare topology")
		return
	}

	if err := ch.Qos(1, 0, false); err != nil {
		logger.Error().Err(err).Msg("Failed to set QoS")
		return
	}

	msgs, err := ch.Consume(
		rabbitmq.NotificationsQueue,
		fmt.Sprintf("nanny-worker-%d", workerID), // A unique consumer tag.
		false,                                    // autoAck: false, acked after dispatch.
		false,                                    // exclusive
		false,                                    // noLocal
		false,                                    // noWait
		nil,                                      // args
	)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to register a consumer")
		return
	}

	logger.Info().Msg("Worker is waiting for messages")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Worker stopping due to context cancellation")
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Warn().Msg("Message channel closed by RabbitMQ, worker stopping")
				return
			}
			c.handleMessage(ctx, msg, logger)
		}
	}
}

// handleMessage dispatches a single message. Delivery failures are contained
// by the dispatcher, so every decodable message is acked without retry.
func (c *Consumer) handleMessage(ctx context.Context, msg amqp.Delivery, logger zerolog.Logger) {
	env, ev, err := wire.Decode(msg.Body)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to decode event, rejecting")
		_ = msg.Reject(false)
		return
	}

	log := logger.With().Str("kind", env.Kind).Str("device", env.Device).Logger()
	requestID := env.ID
	if requestID == "" {
		requestID = msg.CorrelationId
	}
	if requestID != "" {
		log = log.With().Str("request_id", requestID).Logger()
	}

	metrics.EventsReceived.WithLabelValues(env.Kind, "queue").Inc()
	report := c.dispatcher.Dispatch(ctx, ev)

	switch {
	case report.Suppressed:
		log.Debug().Msg("Event suppressed")
	case report.Delivered():
		log.Info().Int("deliveries", len(report.Deliveries)).Msg("Event dispatched")
	default:
		log.Warn().Int("failed", len(report.Failed())).Int("deliveries", len(report.Deliveries)).Msg("Event dispatched with failures")
	}

	if err := msg.Ack(false); err != nil {
		log.Error().Err(err).Msg("Failed to ack message")
	}
}
