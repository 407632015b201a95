// Package amqp publishes finished extractions to a RabbitMQ exchange.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/flowpaths/pkg/domain"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageTypeExtraction tags messages carrying a finished extraction.
const MessageTypeExtraction = "extraction.completed"

// DefaultExchange is the topic exchange extractions are published to.
const DefaultExchange = "flowpaths.extractions"

// Message is the envelope written to the broker.
type Message struct {
	ID        string             `json:"id"`
	Type      string             `json:"type"`
	Payload   *domain.Extraction `json:"payload"`
	Timestamp time.Time          `json:"timestamp"`
}

// Publisher implements ports.ResultPublisher on a topic exchange.
// The routing key is the workflow name, so consumers can bind per workflow or with "#".
type Publisher struct {
	exchange string
	logger   *slog.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithExchange overrides DefaultExchange.
func WithExchange(name string) Option {
	return func(p *Publisher) {
		p.exchange = name
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// Dial connects to the broker and declares the exchange.
func Dial(url string, opts ...Option) (*Publisher, error) {
	p := &Publisher{
		exchange: DefaultExchange,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
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
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}

	p.conn, p.channel = conn, ch
	p.logger.Info("connected to RabbitMQ", "exchange", p.exchange)
	return p, nil
}

// NewMessage wraps an extraction in a fresh envelope.
func NewMessage(ext *domain.Extraction) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeExtraction,
		Payload:   ext,
		Timestamp: time.Now(),
	}
}

// Publish sends the extraction as a persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, ext *domain.Extraction) error {
	msg := NewMessage(ext)
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel == nil {
		return fmt.Errorf("no channel available")
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,   // exchange
		ext.Workflow, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.ID,
			Timestamp:    msg.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %s/%s: %w", p.exchange, ext.Workflow, err)
	}

	p.logger.Debug("published extraction",
		"exchange", p.exchange,
		"routing_key", ext.Workflow,
		"message_id", msg.ID,
		"actions", len(ext.Actions),
	)
	return nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close channel: %w", err))
		}
		p.channel = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
		p.conn = nil
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
