package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const publishTimeout = 5 * time.Second

// Publisher sends events to a topic exchange. With an empty URI it is
// disabled and every publish is a no-op.
type Publisher struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	enabled bool
	log     zerolog.Logger
}

// NewPublisher dials RabbitMQ and declares the event exchange.
func NewPublisher(uri string, log zerolog.Logger) (*Publisher, error) {
	p := &Publisher{log: log.With().Str("component", "event_publisher").Logger()}

	if uri == "" {
		p.log.Warn().Msg("AMQP_URL is empty, event publishing is disabled")
		return p, nil
	}

	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	p.conn = conn
	p.channel = ch
	p.enabled = true
	p.log.Info().Str("exchange", ExchangeName).Msg("RabbitMQ connected")
	return p, nil
}

// Enabled reports whether events are actually sent.
func (p *Publisher) Enabled() bool {
	return p.enabled
}

// PublishQuizCompleted publishes e under its event type as routing key.
func (p *Publisher) PublishQuizCompleted(ctx context.Context, e *QuizCompleted) error {
	return p.publish(ctx, e.EventType, e)
}

func (p *Publisher) publish(ctx context.Context, routingKey string, payload any) error {
	if !p.enabled {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(pubCtx, ExchangeName, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	p.log.Debug().Str("routing_key", routingKey).Msg("Event published")
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	if !p.enabled {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.Close(); err != nil {
		p.log.Warn().Err(err).Msg("Close channel failed")
	}
	return p.conn.Close()
}
