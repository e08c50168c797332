package model

import (
	"errors"

	"github.com/google/uuid"
)

// Destination is the class of recipient a message is addressed to.
type Destination string

const (
	DestinationBroadcast Destination = "broadcast" // The device checkout channel.
	DestinationTeam      Destination = "team"      // The office/team channel.
	DestinationDirect    Destination = "direct"    // A single user.
)

// Message is a rendered notification ready for a transport.
type Message struct {
	Destination Destination
	Target      string // Transport specific id: channel id, user id, chat id or address.
	Body        string
	DisplayName string
}

// Errors returned by transports. Implementations wrap one of these so the
// dispatcher can branch on the kind of failure.
var (
	ErrTransportFailure    = errors.New("transport failure")
	ErrUnresolvedRecipient = errors.New("unresolved recipient")
)

// Outcome is the result of a single delivery attempt.
type Outcome string

const (
	OutcomeSent                Outcome = "sent"
	OutcomeTransportFailure    Outcome = "transport_failure"
	OutcomeUnresolvedRecipient Outcome = "unresolved_recipient"
	OutcomeSuppressed          Outcome = "suppressed"
)

// OutcomeOf classifies a transport error. Errors that wrap neither sentinel
// count as transport failures.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSent
	case errors.Is(err, ErrUnresolvedRecipient):
		return OutcomeUnresolvedRecipient
	default:
		return OutcomeTransportFailure
	}
}

// Delivery records one attempted send.
type Delivery struct {
	Destination Destination
	Target      string
	Outcome     Outcome
	Err         error
}

// Report summarizes everything the dispatcher did for one event.
type Report struct {
	EventID    uuid.UUID
	Kind       Kind
	Suppressed bool
	Deliveries []Delivery
}

// Delivered reports whether at least one send was attempted and all succeeded.
func (r Report) Delivered() bool {
	if len(r.Deliveries) == 0 {
		return false
	}
	for _, d := range r.Deliveries {
		if d.Outcome != OutcomeSent {
			return false
		}
	}
	return true
}

// Failed returns the deliveries that did not succeed.
func (r Report) Failed() []Delivery {
	var failed []Delivery
	for _, d := range r.Deliveries {
		if d.Outcome != OutcomeSent {
			failed = append(failed, d)
		}
	}
	return failed
}
