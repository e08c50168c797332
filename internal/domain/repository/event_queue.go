package repository

import (
	"context"

	"github.com/devicenanny/notifier/internal/domain/model"
)

// EventQueue defines the contract for handing events to the queue worker.
// This provides an abstraction over a broker like RabbitMQ.
type EventQueue interface {
	// Publish enqueues an event for dispatch by a worker. requestID is the
	// caller's optional correlation id. Delivery is at most once; the queue is
	// not durable.
	Publish(ctx context.Context, requestID string, ev model.Event) error
}
