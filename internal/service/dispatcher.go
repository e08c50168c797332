package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/devicenanny/notifier/internal/config"
	"github.com/devicenanny/notifier/internal/domain/model"
	"github.com/devicenanny/notifier/internal/notifiers"
	"github.com/devicenanny/notifier/internal/observability/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Dispatcher renders checkout lifecycle events into messages and delivers
// them through a Notifier.
//
// Every delivery is attempted once under its own timeout. Failures are logged
// and reported, never returned as errors, so checkout logic is independent of
// notification delivery. A Dispatcher holds no mutable state and is safe for
// concurrent use.
type Dispatcher struct {
	notifier    notifiers.Notifier
	channel     string
	teamChannel string
	displayName string
	timeout     time.Duration
	expiryDays  int
	logger      zerolog.Logger
}

// defaultTimeout applies when the configuration carries no transport timeout.
const defaultTimeout = 10 * time.Second

// outbound is a rendered message that has not been sent yet.
type outbound struct {
	dest   model.Destination
	target string
	body   string
}

// NewDispatcher creates a new Dispatcher from the startup configuration.
func NewDispatcher(cfg *config.Config, notifier notifiers.Notifier, logger *zerolog.Logger) *Dispatcher {
	timeout := cfg.Transport.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{
		notifier:    notifier,
		channel:     cfg.Slack.Channel,
		teamChannel: cfg.Slack.TeamChannel,
		displayName: cfg.Transport.DisplayName,
		timeout:     timeout,
		expiryDays:  cfg.Checkout.ExpiryDays,
		logger:      logger.With().Str("layer", "dispatcher").Logger(),
	}
}

// Dispatch routes an event to the operation for its kind.
func (d *Dispatcher) Dispatch(ctx context.Context, ev model.Event) model.Report {
	switch e := ev.(type) {
	case model.HelpNeeded:
		return d.HelpNeeded(ctx, e)
	case model.UserReminder:
		return d.UserReminder(ctx, e)
	case model.CheckOutConfirmed:
		return d.CheckOutConfirmed(ctx, e)
	case model.CheckInConfirmed:
		return d.CheckInConfirmed(ctx, e)
	case model.ChannelExpiryUpdate:
		return d.ChannelExpiryUpdate(ctx, e)
	case model.NannyAutoCheckIn:
		return d.NannyAutoCheckIn(ctx, e)
	case model.MissingDeviceAlert:
		return d.MissingDeviceAlert(ctx, e)
	}

	report := model.Report{EventID: uuid.New()}
	if ev != nil {
		report.Kind = ev.Kind()
	}
	d.logger.Warn().Str("event_id", report.EventID.String()).Str("type", fmt.Sprintf("%T", ev)).Msg("unsupported event, nothing sent")
	return report
}

// HelpNeeded warns the device channel that a device was taken without a checkout.
func (d *Dispatcher) HelpNeeded(ctx context.Context, e model.HelpNeeded) model.Report {
	return d.deliver(ctx, e.Kind(), d.eventLogger(e.Kind(), e.Device), outbound{
		dest:   model.DestinationBroadcast,
		target: d.channel,
		body:   helpNeededText(e.Device),
	})
}

// UserReminder sends a checkout expiry reminder to the user.
func (d *Dispatcher) UserReminder(ctx context.Context, e model.UserReminder) model.Report {
	return d.deliver(ctx, e.Kind(), d.eventLogger(e.Kind(), e.Device), outbound{
		dest:   model.DestinationDirect,
		target: e.SlackID,
		body:   userReminderText(e.Elapsed, e.Device),
	})
}

// CheckOutConfirmed confirms a checkout to the user and announces it on the
// device channel. The two sends are independent.
func (d *Dispatcher) CheckOutConfirmed(ctx context.Context, e model.CheckOutConfirmed) model.Report {
	return d.deliver(ctx, e.Kind(), d.eventLogger(e.Kind(), e.Device),
		outbound{
			dest:   model.DestinationDirect,
			target: e.User.SlackID,
			body:   checkOutUserText(e.Device, d.expiryDays),
		},
		outbound{
			dest:   model.DestinationBroadcast,
			target: d.channel,
			body:   checkOutChannelText(e.User.FirstName, e.User.LastName, e.Device),
		},
	)
}

// CheckInConfirmed confirms a check-in to the user and announces it on the
// device channel. Nothing is sent when the user is unresolved: a device
// returned without a known checkout produces no notification.
func (d *Dispatcher) CheckInConfirmed(ctx context.Context, e model.CheckInConfirmed) model.Report {
	log := d.eventLogger(e.Kind(), e.Device)
	log.Debug().Str("slack_id", e.User.SlackID).Msg("check-in for user")

	if !e.User.Resolved() {
		report := model.Report{EventID: uuid.New(), Kind: e.Kind(), Suppressed: true}
		metrics.ObserveSuppressed(e.Kind())
		log.Debug().Str("event_id", report.EventID.String()).Msg("user unresolved, check-in notice suppressed")
		return report
	}

	return d.deliver(ctx, e.Kind(), log,
		outbound{
			dest:   model.DestinationDirect,
			target: e.User.SlackID,
			body:   checkInUserText(e.Device),
		},
		outbound{
			dest:   model.DestinationBroadcast,
			target: d.channel,
			body:   checkInChannelText(e.User.FirstName, e.User.LastName, e.Device),
		},
	)
}

// ChannelExpiryUpdate announces an overdue checkout on the device channel.
func (d *Dispatcher) ChannelExpiryUpdate(ctx context.Context, e model.ChannelExpiryUpdate) model.Report {
	return d.deliver(ctx, e.Kind(), d.eventLogger(e.Kind(), e.Device), outbound{
		dest:   model.DestinationBroadcast,
		target: d.channel,
		body:   channelExpiryText(e.Device, e.Elapsed, e.FirstName, e.LastName),
	})
}

// NannyAutoCheckIn announces a device the nanny checked in on its own.
func (d *Dispatcher) NannyAutoCheckIn(ctx context.Context, e model.NannyAutoCheckIn) model.Report {
	return d.deliver(ctx, e.Kind(), d.eventLogger(e.Kind(), e.Device), outbound{
		dest:   model.DestinationBroadcast,
		target: d.channel,
		body:   nannyCheckInText(e.Device),
	})
}

// MissingDeviceAlert escalates a device missing past the checkout window to
// the team channel.
func (d *Dispatcher) MissingDeviceAlert(ctx context.Context, e model.MissingDeviceAlert) model.Report {
	report := d.deliver(ctx, e.Kind(), d.eventLogger(e.Kind(), e.Device), outbound{
		dest:   model.DestinationTeam,
		target: d.teamChannel,
		body:   missingDeviceText(e.Device, e.Elapsed),
	})
	if report.Delivered() {
		d.logger.Info().Str("device", e.Device).Msg("missing device reminder sent to team channel")
	}
	return report
}

func (d *Dispatcher) eventLogger(kind model.Kind, device string) zerolog.Logger {
	return d.logger.With().Str("kind", string(kind)).Str("device", device).Logger()
}

// deliver sends every message independently. With more than one message the
// sends run concurrently so a slow or failing destination cannot hold up the
// others. Deliveries keep the order of msgs.
func (d *Dispatcher) deliver(ctx context.Context, kind model.Kind, log zerolog.Logger, msgs ...outbound) model.Report {
	report := model.Report{
		EventID:    uuid.New(),
		Kind:       kind,
		Deliveries: make([]model.Delivery, len(msgs)),
	}
	log = log.With().Str("event_id", report.EventID.String()).Logger()

	if len(msgs) == 1 {
		report.Deliveries[0] = d.send(ctx, kind, log, msgs[0])
		return report
	}

	var wg sync.WaitGroup
	for i, m := range msgs {
		wg.Add(1)
		go func(i int, m outbound) {
			defer wg.Done()
			report.Deliveries[i] = d.send(ctx, kind, log, m)
		}(i, m)
	}
	wg.Wait()

	return report
}

// send performs one transport call under the per-call timeout and logs the outcome.
func (d *Dispatcher) send(ctx context.Context, kind model.Kind, log zerolog.Logger, m outbound) (delivery model.Delivery) {
	delivery = model.Delivery{Destination: m.dest, Target: m.target}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			delivery.Err = fmt.Errorf("notifier panic: %v: %w", r, model.ErrTransportFailure)
			delivery.Outcome = model.OutcomeTransportFailure
		}

		metrics.ObserveDelivery(kind, m.dest, delivery.Outcome, start)

		entry := log.With().Str("destination", string(m.dest)).Str("target", m.target).Logger()
		switch delivery.Outcome {
		case model.OutcomeSent:
			entry.Debug().Msg("message sent")
		case model.OutcomeUnresolvedRecipient:
			entry.Warn().Err(delivery.Err).Msg("recipient could not be resolved, skipping")
		default:
			entry.Warn().Err(delivery.Err).Msg("message delivery failed")
		}
	}()

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	delivery.Err = d.notifier.Send(sendCtx, &model.Message{
		Destination: m.dest,
		Target:      m.target,
		Body:        m.body,
		DisplayName: d.displayName,
	})
	delivery.Outcome = model.OutcomeOf(delivery.Err)
	return delivery
}
