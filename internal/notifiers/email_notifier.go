package notifiers

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/devicenanny/notifier/internal/config"
	"github.com/devicenanny/notifier/internal/domain/model"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// maxSubjectLen caps the subject derived from the message body, in bytes.
const maxSubjectLen = 78

// sender abstracts gomail.Dialer so tests can run without an SMTP server.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier sends notifications via SMTP. Targets are email addresses,
// typically a mailing list for the channels and a person for direct messages.
type EmailNotifier struct {
	dialer sender
	from   string
	logger zerolog.Logger
}

// NewEmailNotifier creates a new instance of EmailNotifier.
func NewEmailNotifier(cfg config.EmailConfig, logger *zerolog.Logger) *EmailNotifier {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &EmailNotifier{
		dialer: d,
		from:   cfg.From,
		logger: logger.With().Str("component", "email_notifier").Logger(),
	}
}

// Send implements the Notifier interface for email.
func (n *EmailNotifier) Send(ctx context.Context, msg *model.Message) error {
	to, err := mail.ParseAddress(msg.Target)
	if err != nil {
		return fmt.Errorf("email: invalid address %q: %w", msg.Target, model.ErrUnresolvedRecipient)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.from, msg.DisplayName)
	m.SetHeader("To", to.Address)
	m.SetHeader("Subject", subjectFrom(msg.Body))
	m.SetBody("text/plain", msg.Body)

	// gomail has no context support; the send keeps running in the background
	// if the caller gives up first.
	done := make(chan error, 1)
	go func() {
		done <- n.dialer.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("email: send to %s: %v: %w", to.Address, ctx.Err(), model.ErrTransportFailure)
	case err := <-done:
		if err != nil {
			return fmt.Errorf("email: send to %s: %v: %w", to.Address, err, model.ErrTransportFailure)
		}
	}

	n.logger.Debug().Str("recipient", to.Address).Msg("email sent successfully")
	return nil
}

// subjectFrom uses the first line of the body, stripped of markup characters.
func subjectFrom(body string) string {
	line, _, _ := strings.Cut(body, "\n")
	line = strings.NewReplacer("`", "", "*", "").Replace(line)
	if len(line) <= maxSubjectLen {
		return line
	}
	cut := maxSubjectLen - 3
	for cut > 0 && !utf8.RuneStart(line[cut]) {
		cut--
	}
	return line[:cut] + "..."
}
