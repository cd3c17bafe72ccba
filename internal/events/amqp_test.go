package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConfirm struct {
	ack bool
	err error
}

func (c fakeConfirm) WaitContext(context.Context) (bool, error) { return c.ack, c.err }

type fakeChannel struct {
	declared   []string
	confirming bool
	published  []amqp091.Publishing
	keys       []string

	publishErr error
	declareErr error
	nack       bool
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error {
	f.declared = append(f.declared, name+"/"+kind)
	return f.declareErr
}

func (f *fakeChannel) Confirm(noWait bool) error {
	f.confirming = true
	return nil
}

func (f *fakeChannel) publish(_ context.Context, exchange, key string, msg amqp091.Publishing) (confirmation, error) {
	if f.publishErr != nil {
		return nil, f.publishErr
	}
	f.keys = append(f.keys, exchange+"/"+key)
	f.published = append(f.published, msg)
	return fakeConfirm{ack: !f.nack}, nil
}

func (f *fakeChannel) IsClosed() bool { return f.closed }

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

// dialSequence hands out the given channels in order.
func dialSequence(chs ...*fakeChannel) (func() (channel, error), *int) {
	n := 0
	return func() (channel, error) {
		if n >= len(chs) {
			return nil, errors.New("connection refused")
		}
		ch := chs[n]
		n++
		return ch, nil
	}, &n
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	dial, _ := dialSequence(ch)
	p, err := newAMQPPublisher(dial, "workhours.events", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"workhours.events/topic"}, ch.declared)
	assert.True(t, ch.confirming)

	ev := InvoiceEvent{
		Type:          TypeInvoiceClosed,
		InvoiceID:     "abc",
		InvoiceNumber: "INV-202510-001",
		Month:         "2025-10",
		TotalAmount:   "2.25",
		Actor:         1,
		OccurredAt:    time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, ch.published, 1)
	assert.Equal(t, []string{"workhours.events/invoice.closed"}, ch.keys)
	msg := ch.published[0]
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp091.Persistent, msg.DeliveryMode)

	var got InvoiceEvent
	require.NoError(t, json.Unmarshal(msg.Body, &got))
	assert.Equal(t, ev, got)
}

func TestAMQPPublisher_MessageIDsAreUnique(t *testing.T) {
	ch := &fakeChannel{}
	dial, _ := dialSequence(ch)
	p, err := newAMQPPublisher(dial, "x", zerolog.Nop())
	require.NoError(t, err)

	ev := InvoiceEvent{Type: TypeInvoiceStatusChanged, InvoiceID: "abc", Status: "sent"}
	require.NoError(t, p.Publish(context.Background(), ev))
	ev.Status = "paid"
	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, ch.published, 2)
	assert.NotEmpty(t, ch.published[0].MessageId)
	assert.NotEqual(t, ch.published[0].MessageId, ch.published[1].MessageId)
}

func TestAMQPPublisher_Nack(t *testing.T) {
	ch := &fakeChannel{nack: true}
	dial, _ := dialSequence(ch)
	p, err := newAMQPPublisher(dial, "x", zerolog.Nop())
	require.NoError(t, err)

	err = p.Publish(context.Background(), InvoiceEvent{Type: TypeInvoiceClosed})
	assert.ErrorIs(t, err, ErrNacked)
}

func TestAMQPPublisher_ReconnectsAfterFailure(t *testing.T) {
	broken := &fakeChannel{publishErr: errors.New("channel closed")}
	fresh := &fakeChannel{}
	dial, dials := dialSequence(broken, fresh)
	p, err := newAMQPPublisher(dial, "x", zerolog.Nop())
	require.NoError(t, err)

	err = p.Publish(context.Background(), InvoiceEvent{Type: TypeInvoiceDeleted})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invoice.deleted")
	assert.True(t, broken.closed)

	require.NoError(t, p.Publish(context.Background(), InvoiceEvent{Type: TypeInvoiceDeleted}))
	assert.Equal(t, 2, *dials)
	assert.Len(t, fresh.published, 1)
	assert.True(t, fresh.confirming)
}

func TestAMQPPublisher_RedialsClosedChannel(t *testing.T) {
	first := &fakeChannel{}
	second := &fakeChannel{}
	dial, _ := dialSequence(first, second)
	p, err := newAMQPPublisher(dial, "x", zerolog.Nop())
	require.NoError(t, err)

	first.closed = true // broker went away
	require.NoError(t, p.Publish(context.Background(), InvoiceEvent{Type: TypeInvoiceClosed}))
	assert.Empty(t, first.published)
	assert.Len(t, second.published, 1)
}

func TestAMQPPublisher_DialFailureOnPublish(t *testing.T) {
	ch := &fakeChannel{}
	dial, _ := dialSequence(ch)
	p, err := newAMQPPublisher(dial, "x", zerolog.Nop())
	require.NoError(t, err)

	ch.closed = true
	err = p.Publish(context.Background(), InvoiceEvent{Type: TypeInvoiceClosed})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNewAMQPPublisher_DeclareFailureClosesChannel(t *testing.T) {
	ch := &fakeChannel{declareErr: errors.New("access refused")}
	dial, _ := dialSequence(ch)
	_, err := newAMQPPublisher(dial, "x", zerolog.Nop())
	require.Error(t, err)
	assert.True(t, ch.closed)
}

func TestAMQPPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	dial, _ := dialSequence(ch)
	p, err := newAMQPPublisher(dial, "x", zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
	assert.NoError(t, p.Close())
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), InvoiceEvent{}))
	assert.NoError(t, p.Close())
}
