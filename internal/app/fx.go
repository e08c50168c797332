package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/devicenanny/notifier/internal/config"
	"github.com/devicenanny/notifier/internal/consumer"
	deliveryHTTP "github.com/devicenanny/notifier/internal/delivery/http"
	repo "github.com/devicenanny/notifier/internal/domain/repository"
	"github.com/devicenanny/notifier/internal/logger"
	"github.com/devicenanny/notifier/internal/notifiers"
	"github.com/devicenanny/notifier/internal/observability/metrics"
	"github.com/devicenanny/notifier/internal/service"
	"github.com/devicenanny/notifier/internal/storage/rabbitmq"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// CommonModule provides dependencies that are shared between the API and Worker applications.
var CommonModule = fx.Options(
	fx.Provide(
		// Core components
		config.NewConfig,
		logger.NewLogger,

		// Transport
		notifiers.New,

		// Service Layer
		fx.Annotate(
			service.NewDispatcher,
			fx.As(new(deliveryHTTP.Dispatcher)),
			fx.As(new(consumer.Dispatcher)),
		),
	),
)

// APIModule defines the Fx module for the HTTP API application.
var APIModule = fx.Options(
	CommonModule, // Include all shared components
	fx.Provide(
		// API-specific components
		newEventQueue,
		deliveryHTTP.NewHandlers,
		deliveryHTTP.NewServer,
	),

	fx.Invoke(func(server *deliveryHTTP.Server, lc fx.Lifecycle) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go func() {
					if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						panic(err)
					}
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return server.Shutdown(ctx)
			},
		})
	}),
)

// WorkerModule defines the Fx module for the background worker application.
var WorkerModule = fx.Options(
	CommonModule, // Include all shared components
	fx.Provide(
		// Worker-specific components
		rabbitmq.NewConnection,
		consumer.New,
	),
	fx.Invoke(func(c *consumer.Consumer, lc fx.Lifecycle) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				go func() {
					defer close(done)
					c.Start(ctx)
				}()
				return nil
			},
			OnStop: func(stopCtx context.Context) error {
				cancel()
				select {
				case <-done:
					return nil
				case <-stopCtx.Done():
					return stopCtx.Err()
				}
			},
		})
	}),
	fx.Invoke(registerMetricsServer),
)

// newEventQueue dials RabbitMQ only when the API hands events to the worker.
// In sync mode no queue is provided and handlers dispatch in the request.
func newEventQueue(cfg *config.Config, lc fx.Lifecycle, logger *zerolog.Logger) (repo.EventQueue, error) {
	if cfg.HTTP.Delivery != config.DeliveryQueue {
		return nil, nil
	}
	conn, err := rabbitmq.NewConnection(cfg, lc)
	if err != nil {
		return nil, err
	}
	return rabbitmq.NewEventQueue(conn, logger)
}

// registerMetricsServer exposes /metrics for the worker when metrics.addr is set.
func registerMetricsServer(cfg *config.Config, lc fx.Lifecycle, logger *zerolog.Logger) {
	if cfg.Metrics.Addr == "" {
		return
	}
	log := logger.With().Str("component", "metrics_server").Logger()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.MetricsHandler())
	server := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error().Err(err).Msg("metrics server stopped")
				}
			}()
			log.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics server started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}
