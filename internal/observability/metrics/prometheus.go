package metrics

import (
	"net/http"
	"time"

	"github.com/devicenanny/notifier/internal/domain/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Transport calls are expected to finish well under the 10s default timeout.
	durationBuckets = []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

	// EventsReceived counts events accepted for dispatch, by kind and inbound source.
	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devicenanny_notifications_events_total",
			Help: "Total number of notification events accepted, by kind and source.",
		},
		[]string{"kind", "source"}, // source: "http" or "queue"
	)

	// Deliveries counts delivery attempts by outcome. Suppressed events are
	// counted once with an empty destination.
	Deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devicenanny_notifications_deliveries_total",
			Help: "Total number of delivery attempts, by event kind, destination and outcome.",
		},
		[]string{"kind", "destination", "outcome"},
	)

	// SendDuration measures single transport calls.
	SendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "devicenanny_notifications_send_duration_seconds",
			Help:    "Histogram of transport send duration in seconds, by outcome.",
			Buckets: durationBuckets,
		},
		[]string{"outcome"},
	)
)

// MetricsHandler returns the HTTP handler for the Prometheus metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// ObserveDelivery records the outcome and duration of one send.
func ObserveDelivery(kind model.Kind, dest model.Destination, outcome model.Outcome, start time.Time) {
	Deliveries.WithLabelValues(string(kind), string(dest), string(outcome)).Inc()
	SendDuration.WithLabelValues(string(outcome)).Observe(time.Since(start).Seconds())
}

// ObserveSuppressed records an event dropped by a business rule.
func ObserveSuppressed(kind model.Kind) {
	Deliveries.WithLabelValues(string(kind), "", string(model.OutcomeSuppressed)).Inc()
}
