// Package wire defines the JSON envelope the checkout system uses to submit
// notification events, over HTTP or through the queue.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/devicenanny/notifier/internal/domain/model"
)

var (
	// ErrInvalidEnvelope is returned when an envelope is malformed or misses a required field.
	ErrInvalidEnvelope = errors.New("invalid event envelope")
	// ErrUnknownKind is returned for an unsupported event kind.
	ErrUnknownKind = errors.New("unknown event kind")
)

// User carries the checkout store's user record. FirstName "Missing" marks an
// unresolved user.
type User struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	SlackID   string `json:"slack_id"`
	Office    string `json:"office,omitempty"`
}

// Envelope is a notification event on the wire. Which fields are read depends on Kind.
type Envelope struct {
	// ID is an optional caller supplied correlation id, only used for logging.
	ID      string `json:"id,omitempty"`
	Kind    string `json:"kind"`
	Device  string `json:"device"`
	Elapsed string `json:"elapsed,omitempty"`

	// SlackID addresses user_reminder. User.SlackID is used when empty.
	SlackID string `json:"slack_id,omitempty"`
	// User is read by check_out and check_in. An absent user on check_in is unresolved.
	User *User `json:"user,omitempty"`
	// FirstName and LastName name the owner for channel_expiry.
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Decode parses data and builds the event it describes.
func Decode(data []byte) (Envelope, model.Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, nil, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	ev, err := env.Event()
	if err != nil {
		return env, nil, err
	}
	return env, ev, nil
}

// Encode serializes the envelope.
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Event validates the envelope and converts it to a model.Event.
func (e Envelope) Event() (model.Event, error) {
	kind := model.Kind(e.Kind)
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
	if e.Device == "" {
		return nil, fmt.Errorf("%w: %s requires device", ErrInvalidEnvelope, kind)
	}

	switch kind {
	case model.KindUserReminder, model.KindChannelExpiry, model.KindMissingDevice:
		if e.Elapsed == "" {
			return nil, fmt.Errorf("%w: %s requires elapsed", ErrInvalidEnvelope, kind)
		}
	case model.KindCheckOut:
		if e.User == nil {
			return nil, fmt.Errorf("%w: %s requires user", ErrInvalidEnvelope, kind)
		}
	}

	switch kind {
	case model.KindHelpNeeded:
		return model.HelpNeeded{Device: e.Device}, nil
	case model.KindUserReminder:
		slackID := e.SlackID
		if slackID == "" && e.User != nil {
			slackID = e.User.SlackID
		}
		return model.UserReminder{SlackID: slackID, Elapsed: e.Elapsed, Device: e.Device}, nil
	case model.KindCheckOut:
		return model.CheckOutConfirmed{User: e.identity(), Device: e.Device}, nil
	case model.KindCheckIn:
		return model.CheckInConfirmed{User: e.identity(), Device: e.Device}, nil
	case model.KindChannelExpiry:
		return model.ChannelExpiryUpdate{Device: e.Device, Elapsed: e.Elapsed, FirstName: e.FirstName, LastName: e.LastName}, nil
	case model.KindNannyCheckIn:
		return model.NannyAutoCheckIn{Device: e.Device}, nil
	default:
		return model.MissingDeviceAlert{Device: e.Device, Elapsed: e.Elapsed}, nil
	}
}

func (e Envelope) identity() model.Identity {
	if e.User == nil {
		return model.UnknownIdentity()
	}
	return model.NewIdentity(e.User.FirstName, e.User.LastName, e.User.SlackID, e.User.Office)
}

// FromEvent builds the envelope for ev. Events survive an encode/decode round
// trip unchanged.
func FromEvent(ev model.Event) (Envelope, error) {
	switch e := ev.(type) {
	case model.HelpNeeded:
		return Envelope{Kind: string(e.Kind()), Device: e.Device}, nil
	case model.UserReminder:
		return Envelope{Kind: string(e.Kind()), Device: e.Device, Elapsed: e.Elapsed, SlackID: e.SlackID}, nil
	case model.CheckOutConfirmed:
		return Envelope{Kind: string(e.Kind()), Device: e.Device, User: fromIdentity(e.User)}, nil
	case model.CheckInConfirmed:
		return Envelope{Kind: string(e.Kind()), Device: e.Device, User: fromIdentity(e.User)}, nil
	case model.ChannelExpiryUpdate:
		return Envelope{Kind: string(e.Kind()), Device: e.Device, Elapsed: e.Elapsed, FirstName: e.FirstName, LastName: e.LastName}, nil
	case model.NannyAutoCheckIn:
		return Envelope{Kind: string(e.Kind()), Device: e.Device}, nil
	case model.MissingDeviceAlert:
		return Envelope{Kind: string(e.Kind()), Device: e.Device, Elapsed: e.Elapsed}, nil
	}
	return Envelope{}, fmt.Errorf("%w: %T", ErrUnknownKind, ev)
}

func fromIdentity(id model.Identity) *User {
	return &User{FirstName: id.FirstName, LastName: id.LastName, SlackID: id.SlackID, Office: id.Office}
}
