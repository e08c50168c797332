package notifiers

import (
	"context"
	"errors"
	"fmt"

	"github.com/devicenanny/notifier/internal/config"
	"github.com/devicenanny/notifier/internal/domain/model"
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
	"golang.org/x/time/rate"
)

// unresolvedSlackErrors are chat.postMessage error codes that mean the target
// id cannot receive the message. Anything else is a transport failure.
var unresolvedSlackErrors = map[string]struct{}{
	"channel_not_found": {},
	"user_not_found":    {},
	"invalid_channel":   {},
	"is_archived":       {},
	"not_in_channel":    {},
	"cannot_dm_bot":     {},
	"user_disabled":     {},
}

// SlackNotifier posts messages through the Slack Web API.
type SlackNotifier struct {
	client  *slack.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewSlackNotifier creates a new instance of SlackNotifier.
func NewSlackNotifier(cfg config.SlackConfig, logger *zerolog.Logger) *SlackNotifier {
	var opts []slack.Option
	if cfg.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(cfg.APIURL))
	}

	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}

	return &SlackNotifier{
		client:  slack.New(cfg.APIKey, opts...),
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.With().Str("component", "slack_notifier").Logger(),
	}
}

// Send implements the Notifier interface for Slack.
func (n *SlackNotifier) Send(ctx context.Context, msg *model.Message) error {
	if msg.Target == "" {
		return fmt.Errorf("slack: empty target for %s destination: %w", msg.Destination, model.ErrUnresolvedRecipient)
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("slack: rate limiter: %v: %w", err, model.ErrTransportFailure)
	}

	channelID, ts, err := n.client.PostMessageContext(ctx, msg.Target,
		slack.MsgOptionText(msg.Body, false),
		slack.MsgOptionUsername(msg.DisplayName),
	)
	if err != nil {
		return classifySlackError(msg.Target, err)
	}

	n.logger.Debug().Str("target", msg.Target).Str("channel", channelID).Str("ts", ts).Msg("slack message posted")
	return nil
}

func classifySlackError(target string, err error) error {
	var apiErr slack.SlackErrorResponse
	if errors.As(err, &apiErr) {
		if _, ok := unresolvedSlackErrors[apiErr.Err]; ok {
			return fmt.Errorf("slack: target %s: %s: %w", target, apiErr.Err, model.ErrUnresolvedRecipient)
		}
		return fmt.Errorf("slack: target %s: %s: %w", target, apiErr.Err, model.ErrTransportFailure)
	}

	var rateErr *slack.RateLimitedError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("slack: rate limited, retry after %s: %w", rateErr.RetryAfter, model.ErrTransportFailure)
	}

	return fmt.Errorf("slack: post to %s: %v: %w", target, err, model.ErrTransportFailure)
}
