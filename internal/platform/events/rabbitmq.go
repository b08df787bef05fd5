package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	orderdomain "github.com/broasteria/broasteria/internal/domains/orders/domain"
	orderports "github.com/broasteria/broasteria/internal/domains/orders/ports"
)

const (
	// Exchange carries every order event, routed as orders.<tenant>.<type>.
	Exchange = "broasteria.orders"

	publishTimeout = 5 * time.Second
)

var _ orderports.EventPublisher = (*RabbitPublisher)(nil)

// RabbitPublisher pushes order events onto a topic exchange. A lost
// connection makes Publish fail fast; the order service treats those
// failures as best effort, so no retry machinery lives here.
type RabbitPublisher struct {
	logger *slog.Logger

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

type Option func(*RabbitPublisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *RabbitPublisher) { p.logger = logger }
}

// Connect dials the broker and declares the orders exchange.
func Connect(url string, opts ...Option) (*RabbitPublisher, error) {
	if url == "" {
		return nil, errors.New("events: rabbitmq url is empty")
	}
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Dial:      amqp.DefaultDial(10 * time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("events: dial rabbitmq: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: open channel: %w", err)
	}
	if err := channel.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("events: declare exchange: %w", err)
	}

	p := &RabbitPublisher{
		logger:  slog.Default(),
		conn:    conn,
		channel: channel,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	p.logger.Info("connected to rabbitmq", slog.String("exchange", Exchange))
	return p, nil
}

// Publish serializes the event as JSON and routes it by tenant and type.
func (p *RabbitPublisher) Publish(ctx context.Context, event orderdomain.Event) error {
	p.mu.RLock()
	conn := p.conn
	channel := p.channel
	p.mu.RUnlock()

	if conn == nil || conn.IsClosed() {
		return errors.New("events: connection is not open")
	}
	if channel == nil || channel.IsClosed() {
		return errors.New("events: channel is not open")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	routingKey := fmt.Sprintf("orders.%s.%s", event.TenantID, event.Type)
	return channel.PublishWithContext(ctx, Exchange, routingKey, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    event.Timestamp,
		Body:         body,
	})
}

// Close releases the channel and connection.
func (p *RabbitPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
