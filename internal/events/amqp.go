package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const publishTimeout = 5 * time.Second

// ErrNacked is returned when the broker refuses a message.
var ErrNacked = errors.New("broker nacked message")

// confirmation is the broker's pending ack for one message.
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

// channel is what the publisher needs from a broker channel.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	Confirm(noWait bool) error
	publish(ctx context.Context, exchange, key string, msg amqp091.Publishing) (confirmation, error)
	IsClosed() bool
	Close() error
}

// amqpChannel owns one connection and the channel opened on it.
type amqpChannel struct {
	*amqp091.Channel
	conn *amqp091.Connection
}

func (c *amqpChannel) publish(ctx context.Context, exchange, key string, msg amqp091.Publishing) (confirmation, error) {
	dc, err := c.PublishWithDeferredConfirmWithContext(ctx, exchange, key, false, false, msg)
	if err != nil {
		return nil, err
	}
	if dc == nil {
		return nil, errors.New("channel is not in confirm mode")
	}
	return dc, nil
}

func (c *amqpChannel) IsClosed() bool {
	return c.Channel.IsClosed() || c.conn.IsClosed()
}

func (c *amqpChannel) Close() error {
	_ = c.Channel.Close()
	return c.conn.Close()
}

func dialer(url string) func() (channel, error) {
	return func() (channel, error) {
		conn, err := amqp091.Dial(url)
		if err != nil {
			return nil, err
		}
		ch, err := conn.Channel()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("open channel: %w", err)
		}
		return &amqpChannel{Channel: ch, conn: conn}, nil
	}
}

// AMQPPublisher sends events to a durable topic exchange, routed by event
// type, and waits for the broker's confirmation of each message. A closed
// or failed channel is replaced on the next publish.
type AMQPPublisher struct {
	dial     func() (channel, error)
	exchange string
	log      zerolog.Logger

	// amqp091 channels are not safe for concurrent publishing.
	mu sync.Mutex
	ch channel
}

// NewAMQPPublisher dials url and declares the exchange. The first connection
// is made here so a bad URL fails at startup.
func NewAMQPPublisher(url, exchange string, log zerolog.Logger) (*AMQPPublisher, error) {
	return newAMQPPublisher(dialer(url), exchange, log)
}

func newAMQPPublisher(dial func() (channel, error), exchange string, log zerolog.Logger) (*AMQPPublisher, error) {
	p := &AMQPPublisher{dial: dial, exchange: exchange, log: log}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// connect opens a channel, declares the exchange and enables confirms.
// Callers hold mu or own p exclusively.
func (p *AMQPPublisher) connect() error {
	ch, err := p.dial()
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}
	err = ch.ExchangeDeclare(
		p.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		ch.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		ch.Close()
		return fmt.Errorf("enable publisher confirms: %w", err)
	}
	p.ch = ch
	return nil
}

func (p *AMQPPublisher) drop() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
}

// Publish sends e as a persistent JSON message with routing key e.Type and
// returns once the broker has acked it.
func (p *AMQPPublisher) Publish(ctx context.Context, e InvoiceEvent) error {
	body, err := e.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		p.drop()
		if err := p.connect(); err != nil {
			return fmt.Errorf("publish %s: %w", e.Type, err)
		}
		p.log.Info().Str("exchange", p.exchange).Msg("reconnected to broker")
	}

	conf, err := p.ch.publish(ctx, p.exchange, e.Type, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    e.OccurredAt,
		MessageId:    uuid.NewString(),
		Type:         e.Type,
		Body:         body,
	})
	if err != nil {
		p.drop()
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	acked, err := conf.WaitContext(ctx)
	if err != nil {
		p.drop()
		return fmt.Errorf("confirm %s: %w", e.Type, err)
	}
	if !acked {
		return fmt.Errorf("publish %s: %w", e.Type, ErrNacked)
	}

	p.log.Debug().
		Str("type", e.Type).
		Str("invoice_number", e.InvoiceNumber).
		Str("exchange", p.exchange).
		Msg("event published")
	return nil
}

// Close shuts the channel and its connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return nil
	}
	err := p.ch.Close()
	p.ch = nil
	return err
}
