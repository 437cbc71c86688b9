package amqpsink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	auth "github.com/goliatone/go-shop-auth"
	"github.com/goliatone/go-shop-auth/activitymap"
)

// DefaultExchange is the topic exchange activity records are published to
const DefaultExchange = "shop.activity"

// Channel is the subset of *amqp.Channel the sink publishes through
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Sink publishes activity events as JSON to a topic exchange. The routing
// key is the normalized channel and verb, e.g. "shop.account.signup".
type Sink struct {
	ch       Channel
	exchange string
	options  []activitymap.Option
	timeout  time.Duration
}

var _ auth.ActivitySink = (*Sink)(nil)

// Option configures a Sink
type Option func(*Sink)

// WithNormalizeOptions forwards options to activitymap.Normalize
func WithNormalizeOptions(opts ...activitymap.Option) Option {
	return func(s *Sink) {
		s.options = append(s.options, opts...)
	}
}

// WithPublishTimeout bounds each publish
func WithPublishTimeout(d time.Duration) Option {
	return func(s *Sink) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New returns a sink publishing on ch to exchange
func New(ch Channel, exchange string, opts ...Option) *Sink {
	if exchange == "" {
		exchange = DefaultExchange
	}
	s := &Sink{ch: ch, exchange: exchange, timeout: 5 * time.Second}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record implements auth.ActivitySink
func (s *Sink) Record(ctx context.Context, event auth.ActivityEvent) error {
	record := activitymap.Normalize(event, s.options...)

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode activity: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.ch.PublishWithContext(ctx, s.exchange, record.RoutingKey(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    record.OccurredAt,
		Type:         record.Verb,
		Body:         body,
	})
}

// Publisher owns the broker connection behind a Sink
type Publisher struct {
	*Sink
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial connects to the broker at url and declares exchange as a durable
// topic exchange.
func Dial(url, exchange string, opts ...Option) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Publisher{Sink: New(ch, exchange, opts...), conn: conn, ch: ch}, nil
}

// Close closes the channel and the connection
func (p *Publisher) Close() error {
	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}
