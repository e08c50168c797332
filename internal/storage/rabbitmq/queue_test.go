package rabbitmq

import (
	"context"
	"errors"
	"testing"

	"github.com/devicenanny/notifier/internal/delivery/wire"
	"github.com/devicenanny/notifier/internal/domain/model"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	exchanges []string
	queues    []string
	bindings  [][2]string
	published []amqp.Publishing
	declErr   error
}

func (f *fakeChannel) ExchangeDeclare(name, _ string, _, _, _, _ bool, _ amqp.Table) error {
	f.exchanges = append(f.exchanges, name)
	return f.declErr
}

func (f *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	f.queues = append(f.queues, name)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) QueueBind(name, _, exchange string, _ bool, _ amqp.Table) error {
	f.bindings = append(f.bindings, [2]string{name, exchange})
	return nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, _ string, _, _ bool, msg amqp.Publishing) error {
	if exchange != EventsExchange {
		return errors.New("unexpected exchange")
	}
	f.published = append(f.published, msg)
	return nil
}

func TestEventQueue_Publish(t *testing.T) {
	logger := zerolog.Nop()
	ch := &fakeChannel{}

	q, err := newEventQueue(ch, &logger)
	require.NoError(t, err)
	assert.Equal(t, []string{EventsExchange}, ch.exchanges)
	assert.Equal(t, []string{NotificationsQueue}, ch.queues)
	assert.Equal(t, [][2]string{{NotificationsQueue, EventsExchange}}, ch.bindings)

	ev := model.MissingDeviceAlert{Device: "Tablet-3", Elapsed: "5 days"}
	require.NoError(t, q.Publish(context.Background(), "req-9", ev))

	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Transient, msg.DeliveryMode)
	assert.Equal(t, "missing_device", msg.Type)
	assert.Equal(t, "req-9", msg.CorrelationId)

	env, decoded, err := wire.Decode(msg.Body)
	require.NoError(t, err)
	assert.Equal(t, ev, decoded)
	assert.Equal(t, "req-9", env.ID)
}

func TestEventQueue_TopologyFailure(t *testing.T) {
	logger := zerolog.Nop()
	_, err := newEventQueue(&fakeChannel{declErr: errors.New("access refused")}, &logger)
	assert.ErrorContains(t, err, "failed to setup topology")
}

func TestEventQueue_PublishUnsupportedEvent(t *testing.T) {
	logger := zerolog.Nop()
	ch := &fakeChannel{}
	q, err := newEventQueue(ch, &logger)
	require.NoError(t, err)

	err = q.Publish(context.Background(), "", nil)
	assert.ErrorIs(t, err, wire.ErrUnknownKind)
	assert.Empty(t, ch.published)
}
