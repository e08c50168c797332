package model

// Kind identifies the checkout lifecycle event a notification is rendered for.
type Kind string

const (
	KindHelpNeeded    Kind = "help_needed"    // A device left the lab without a checkout.
	KindUserReminder  Kind = "user_reminder"  // A user's checkout is near or past expiry.
	KindCheckOut      Kind = "check_out"      // A user checked a device out.
	KindCheckIn       Kind = "check_in"       // A user checked a device back in.
	KindChannelExpiry Kind = "channel_expiry" // An overdue checkout announced to the channel.
	KindNannyCheckIn  Kind = "nanny_check_in" // The nanny checked in a device nobody returned.
	KindMissingDevice Kind = "missing_device" // A device has been gone past the allowed window.
)

// Kinds lists every supported event kind.
var Kinds = []Kind{
	KindHelpNeeded,
	KindUserReminder,
	KindCheckOut,
	KindCheckIn,
	KindChannelExpiry,
	KindNannyCheckIn,
	KindMissingDevice,
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Event is a notification event. The concrete type carries only the fields
// its template needs.
type Event interface {
	Kind() Kind
}

// HelpNeeded warns the lab channel that a device was taken without a checkout.
type HelpNeeded struct {
	Device string
}

// UserReminder reminds a user directly of an active checkout.
type UserReminder struct {
	SlackID string
	Elapsed string // Human readable time since checkout, e.g. "3 days".
	Device  string
}

// CheckOutConfirmed is sent to the user and announced on the lab channel.
type CheckOutConfirmed struct {
	User   Identity
	Device string
}

// CheckInConfirmed is sent to the user and announced on the lab channel,
// unless the user is unresolved.
type CheckInConfirmed struct {
	User   Identity
	Device string
}

// ChannelExpiryUpdate announces an overdue checkout on the lab channel.
type ChannelExpiryUpdate struct {
	Device    string
	Elapsed   string
	FirstName string
	LastName  string
}

// NannyAutoCheckIn announces a check-in performed without a user.
type NannyAutoCheckIn struct {
	Device string
}

// MissingDeviceAlert escalates a long-missing device to the team channel.
type MissingDeviceAlert struct {
	Device  string
	Elapsed string
}

func (HelpNeeded) Kind() Kind          { return KindHelpNeeded }
func (UserReminder) Kind() Kind        { return KindUserReminder }
func (CheckOutConfirmed) Kind() Kind   { return KindCheckOut }
func (CheckInConfirmed) Kind() Kind    { return KindCheckIn }
func (ChannelExpiryUpdate) Kind() Kind { return KindChannelExpiry }
func (NannyAutoCheckIn) Kind() Kind    { return KindNannyCheckIn }
func (MissingDeviceAlert) Kind() Kind  { return KindMissingDevice }
