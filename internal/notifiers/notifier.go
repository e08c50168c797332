package notifiers

import (
	"context"

	"github.com/devicenanny/notifier/internal/domain/model"
)

// Notifier is the outbound messaging transport boundary: post a body to a
// destination id under a sender display name.
//
// Implementations must be safe for concurrent use and must wrap every error in
// model.ErrTransportFailure or model.ErrUnresolvedRecipient.
type Notifier interface {
	// Send delivers the message once. It does not retry.
	Send(ctx context.Context, msg *model.Message) error
}
