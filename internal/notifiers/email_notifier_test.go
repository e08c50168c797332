package notifiers

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/devicenanny/notifier/internal/config"
	"github.com/devicenanny/notifier/internal/domain/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent  []*gomail.Message
	err   error
	delay time.Duration
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	time.Sleep(f.delay)
	f.sent = append(f.sent, m...)
	return f.err
}

func newTestEmailNotifier(d *fakeDialer) *EmailNotifier {
	logger := zerolog.Nop()
	n := NewEmailNotifier(config.EmailConfig{Host: "smtp.example.com", Port: 587, From: "nanny@example.com"}, &logger)
	n.dialer = d
	return n
}

func TestEmailNotifier_Send(t *testing.T) {
	d := &fakeDialer{}
	n := newTestEmailNotifier(d)

	err := n.Send(context.Background(), &model.Message{
		Target:      "device-lab@example.com",
		Body:        "*Ana Gomez* just checked out `Laptop-12`",
		DisplayName: "device-nanny",
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"device-lab@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Ana Gomez just checked out Laptop-12"}, m.GetHeader("Subject"))
	from := m.GetHeader("From")
	require.Len(t, from, 1)
	assert.Contains(t, from[0], "device-nanny")
	assert.Contains(t, from[0], "nanny@example.com")

	var raw bytes.Buffer
	_, err = m.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "Laptop-12")
}

func TestEmailNotifier_Errors(t *testing.T) {
	t.Run("Invalid address is unresolved", func(t *testing.T) {
		d := &fakeDialer{}
		err := newTestEmailNotifier(d).Send(context.Background(), &model.Message{Target: "U123", Body: "hi"})
		assert.ErrorIs(t, err, model.ErrUnresolvedRecipient)
		assert.Empty(t, d.sent)
	})

	t.Run("SMTP failure", func(t *testing.T) {
		d := &fakeDialer{err: errors.New("535 authentication failed")}
		err := newTestEmailNotifier(d).Send(context.Background(), &model.Message{Target: "ana@example.com", Body: "hi"})
		assert.ErrorIs(t, err, model.ErrTransportFailure)
	})

	t.Run("Deadline", func(t *testing.T) {
		d := &fakeDialer{delay: time.Second}
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := newTestEmailNotifier(d).Send(ctx, &model.Message{Target: "ana@example.com", Body: "hi"})
		assert.ErrorIs(t, err, model.ErrTransportFailure)
	})
}

func TestSubjectFrom(t *testing.T) {
	assert.Equal(t, "You checked in Laptop-12. Thanks!", subjectFrom("You checked in `Laptop-12`. Thanks!"))
	assert.Equal(t, "first", subjectFrom("first\nsecond"))

	long := subjectFrom("`Tablet-3` has been missing from the device lab for `5 days`. If you have it, please return it.")
	assert.Len(t, long, maxSubjectLen)
	assert.True(t, len(long) > 3 && long[len(long)-3:] == "...")

	accented := subjectFrom(strings.Repeat("é", 60))
	assert.True(t, utf8.ValidString(accented))
	assert.LessOrEqual(t, len(accented), maxSubjectLen)
	assert.Equal(t, strings.Repeat("é", 37)+"...", accented)
}
