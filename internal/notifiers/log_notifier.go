package notifiers

import (
	"context"

	"github.com/devicenanny/notifier/internal/domain/model"
	"github.com/rs/zerolog"
)

// LogNotifier is a mock notifier that implements the Notifier interface.
// It writes the rendered message to the log instead of sending it, which is
// what "log_only" mode and local development use.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a new instance of LogNotifier.
func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	return &LogNotifier{
		logger: logger.With().Str("component", "log_notifier").Logger(),
	}
}

// Send implements the Notifier interface.
func (n *LogNotifier) Send(_ context.Context, msg *model.Message) error {
	n.logger.Info().
		Str("destination", string(msg.Destination)).
		Str("target", msg.Target).
		Str("display_name", msg.DisplayName).
		Str("body", msg.Body).
		Msg(">>> MOCK SEND: message dispatched")
	return nil
}
