package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/devicenanny/notifier/internal/config"
	"github.com/devicenanny/notifier/internal/delivery/wire"
	"github.com/devicenanny/notifier/internal/domain/model"
	repo "github.com/devicenanny/notifier/internal/domain/repository"
	"github.com/devicenanny/notifier/internal/observability/metrics"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// maxBodyBytes caps an event envelope.
const maxBodyBytes = 64 << 10

// Dispatcher delivers one event. service.Dispatcher implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev model.Event) model.Report
}

// HandlersParams are the dependencies of Handlers. Queue is only provided
// when http.delivery is "queue".
type HandlersParams struct {
	fx.In

	Config     *config.Config
	Dispatcher Dispatcher
	Queue      repo.EventQueue `optional:"true"`
	Logger     *zerolog.Logger
}

type Handlers struct {
	dispatcher Dispatcher
	queue      repo.EventQueue
	logger     zerolog.Logger
}

// NewHandlers creates a new instance of Handlers.
func NewHandlers(p HandlersParams) *Handlers {
	h := &Handlers{
		dispatcher: p.Dispatcher,
		logger:     p.Logger.With().Str("layer", "http_handler").Logger(),
	}
	if p.Config.HTTP.Delivery == config.DeliveryQueue {
		h.queue = p.Queue
	}
	return h
}

// RegisterRoutes sets up the routing for the notification API.
func (h *Handlers) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/notifications", h.CreateNotification)
	}
}

// CreateNotification accepts an event envelope and either dispatches it or
// queues it. Delivery failures are reported in the body, not as HTTP errors.
func (h *Handlers) CreateNotification(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn().Int64("limit", tooLarge.Limit).Msg("request body too large")
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large"})
			return
		}
		h.logger.Warn().Err(err).Msg("failed to read request body")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return
	}

	env, ev, err := wire.Decode(body)
	if err != nil {
		h.logger.Warn().Err(err).Msg("invalid event envelope")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	log := h.logger.With().Str("kind", env.Kind).Str("device", env.Device).Logger()
	if env.ID != "" {
		log = log.With().Str("request_id", env.ID).Logger()
	}
	metrics.EventsReceived.WithLabelValues(env.Kind, "http").Inc()

	if h.queue != nil {
		if err := h.queue.Publish(c.Request.Context(), env.ID, ev); err != nil {
			log.Error().Err(err).Msg("failed to queue event")
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "failed to queue event"})
			return
		}
		log.Info().Msg("event queued")
		c.JSON(http.StatusAccepted, QueuedResponse{Status: "queued", Kind: env.Kind})
		return
	}

	report := h.dispatcher.Dispatch(c.Request.Context(), ev)
	log.Info().
		Str("event_id", report.EventID.String()).
		Bool("suppressed", report.Suppressed).
		Bool("delivered", report.Delivered()).
		Msg("event dispatched")
	c.JSON(http.StatusOK, toReportResponse(report))
}
