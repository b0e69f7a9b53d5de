package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/nishadadilshan/customer-service/internal/config"
	"github.com/nishadadilshan/customer-service/internal/model"
)

const (
	CustomerCreated = "customer.created"
	CustomerUpdated = "customer.updated"
	CustomerDeleted = "customer.deleted"
)

// Event notifies other services that a customer row changed.
type Event struct {
	Type       string          `json:"type"`
	CustomerID int64           `json:"customerId"`
	Customer   *model.Customer `json:"customer,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// Publisher interface
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// New returns an AMQP publisher, or a no-op one when no broker URL is configured.
func New(cfg config.AMQPConfig, log *zap.Logger) (Publisher, error) {
	if cfg.URL == "" {
		log.Info("AMQP_URL not set, customer events disabled")
		return NopPublisher{}, nil
	}
	p, err := DialAMQP(cfg, log)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                        { return nil }

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher sends events to a durable queue on the default exchange.
type AMQPPublisher struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    amqpChannel
	queue string
	log   *zap.Logger
}

// DialAMQP connects to the broker and declares the events queue.
func DialAMQP(cfg config.AMQPConfig, log *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to queue")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "failed to open queue channel")
	}

	q, err := ch.QueueDeclare(
		cfg.Queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Wrap(err, "failed to declare queue")
	}

	p := NewAMQPPublisher(ch, q.Name, log)
	p.conn = conn
	return p, nil
}

// NewAMQPPublisher publishes on an already open channel.
func NewAMQPPublisher(ch amqpChannel, queue string, log *zap.Logger) *AMQPPublisher {
	return &AMQPPublisher{
		ch:    ch,
		queue: queue,
		log:   log.Named("events"),
	}
}

func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.Publish(
		"",
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         e.Type,
			Timestamp:    e.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return errors.Wrapf(err, "publish %s", e.Type)
	}

	p.log.Debug("event published", zap.String("type", e.Type), zap.Int64("customer_id", e.CustomerID))
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
