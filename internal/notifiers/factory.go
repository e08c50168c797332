package notifiers

import (
	"fmt"

	"github.com/devicenanny/notifier/internal/config"
	"github.com/rs/zerolog"
)

// New returns the transport selected by notifiers.mode. Unknown modes fall
// back to the LogNotifier; config.Validate rejects them earlier in practice.
func New(cfg *config.Config, logger *zerolog.Logger) (Notifier, error) {
	log := logger.With().Str("component", "notifier_factory").Logger()
	log.Info().Str("mode", cfg.Notifiers.Mode).Msg("initializing notifier")

	switch cfg.Notifiers.Mode {
	case config.ModeSlack:
		log.Info().Msg("slack notifier enabled")
		return NewSlackNotifier(cfg.Slack, logger), nil
	case config.ModeTelegram:
		tg, err := NewTelegramNotifier(cfg.Notifiers.Telegram, cfg.Transport.Timeout, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telegram notifier: %w", err)
		}
		log.Info().Msg("telegram notifier enabled")
		return tg, nil
	case config.ModeEmail:
		log.Info().Msg("email notifier enabled")
		return NewEmailNotifier(cfg.Notifiers.Email, logger), nil
	case config.ModeLogOnly:
	default:
		log.Warn().Str("mode", cfg.Notifiers.Mode).Msg("unknown notifier mode, using log notifier")
	}
	return NewLogNotifier(logger), nil
}
