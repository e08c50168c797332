package notifiers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/devicenanny/notifier/internal/config"
	"github.com/devicenanny/notifier/internal/domain/model"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramNotifier sends notifications via a Telegram bot. Targets are numeric
// chat ids or public channel usernames starting with "@".
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	logger zerolog.Logger
}

// NewTelegramNotifier creates a new instance of TelegramNotifier. The bot token
// is verified against the API on creation.
func NewTelegramNotifier(cfg config.TelegramConfig, timeout time.Duration, logger *zerolog.Logger) (*TelegramNotifier, error) {
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot api: %w", err)
	}
	return &TelegramNotifier{
		bot:    bot,
		logger: logger.With().Str("component", "telegram_notifier").Logger(),
	}, nil
}

// Send implements the Notifier interface for Telegram. The display name is
// fixed by the bot account and is not sent.
func (n *TelegramNotifier) Send(ctx context.Context, msg *model.Message) error {
	var tgMsg tgbotapi.MessageConfig
	switch {
	case strings.HasPrefix(msg.Target, "@"):
		tgMsg = tgbotapi.NewMessageToChannel(msg.Target, msg.Body)
	default:
		chatID, err := strconv.ParseInt(msg.Target, 10, 64)
		if err != nil {
			return fmt.Errorf("telegram: invalid chat id %q: %w", msg.Target, model.ErrUnresolvedRecipient)
		}
		tgMsg = tgbotapi.NewMessage(chatID, msg.Body)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("telegram: %v: %w", err, model.ErrTransportFailure)
	}

	// The bot API takes no context; an abandoned request is still bounded by
	// the client timeout.
	done := make(chan error, 1)
	go func() {
		_, err := n.bot.Send(tgMsg)
		done <- err
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("telegram: send to %s: %v: %w", msg.Target, ctx.Err(), model.ErrTransportFailure)
	case err := <-done:
		if err != nil {
			return classifyTelegramError(msg.Target, err)
		}
	}

	n.logger.Debug().Str("target", msg.Target).Msg("telegram message sent")
	return nil
}

func classifyTelegramError(target string, err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		desc := strings.ToLower(apiErr.Message)
		if apiErr.Code == http.StatusForbidden || strings.Contains(desc, "chat not found") {
			return fmt.Errorf("telegram: target %s: %s: %w", target, apiErr.Message, model.ErrUnresolvedRecipient)
		}
		return fmt.Errorf("telegram: target %s: %s: %w", target, apiErr.Message, model.ErrTransportFailure)
	}
	return fmt.Errorf("telegram: send to %s: %v: %w", target, err, model.ErrTransportFailure)
}
