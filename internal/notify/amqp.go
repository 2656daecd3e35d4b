package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"eventflow/internal/config"
	"eventflow/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// OrderConfirmedMessage is the body published for each confirmed order
type OrderConfirmedMessage struct {
	Type    string              `json:"type"`
	Order   *models.OrderRecord `json:"order"`
	SentAt  time.Time           `json:"sentAt"`
	Version int                 `json:"version"`
}

// Publisher is the part of *amqp.Channel the notifier needs
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPNotifier publishes order confirmations to a RabbitMQ exchange
type AMQPNotifier struct {
	conn       *amqp.Connection
	channel    Publisher
	exchange   string
	routingKey string
	logger     *slog.Logger
}

// NewAMQPNotifier dials the broker and declares the topic exchange
func NewAMQPNotifier(cfg config.NotifyConfig, logger *slog.Logger) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		cfg.Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	n := NewAMQPNotifierWithPublisher(ch, cfg.Exchange, cfg.RoutingKey, logger)
	n.conn = conn
	return n, nil
}

// NewAMQPNotifierWithPublisher wraps an existing channel
func NewAMQPNotifierWithPublisher(p Publisher, exchange, routingKey string, logger *slog.Logger) *AMQPNotifier {
	return &AMQPNotifier{
		channel:    p,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
	}
}

// OrderConfirmed publishes a persistent JSON message for the order
func (n *AMQPNotifier) OrderConfirmed(ctx context.Context, order *models.OrderRecord) error {
	body, err := json.Marshal(OrderConfirmedMessage{
		Type:    "order.confirmed",
		Order:   order,
		SentAt:  time.Now().UTC(),
		Version: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to encode order %s: %w", order.OrderNumber, err)
	}

	msg := amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		ContentType:  "application/json",
		MessageId:    order.OrderNumber,
		Body:         body,
	}

	if err := n.channel.PublishWithContext(ctx, n.exchange, n.routingKey, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish order %s: %w", order.OrderNumber, err)
	}

	n.logger.InfoContext(ctx, "Notify: order confirmation published",
		"order", order.OrderNumber,
		"exchange", n.exchange,
		"routing_key", n.routingKey,
	)
	return nil
}

// Close closes the channel and connection if this notifier opened them
func (n *AMQPNotifier) Close() error {
	if ch, ok := n.channel.(*amqp.Channel); ok && ch != nil {
		if err := ch.Close(); err != nil {
			return err
		}
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}

// New picks the AMQP notifier when a broker URL is configured and falls back
// to logging otherwise or when the broker is unreachable
func New(cfg config.NotifyConfig, logger *slog.Logger) Notifier {
	if cfg.AMQPURL == "" {
		logger.Info("Notify: using log notifier (no AMQP_URL configured)")
		return NewLogNotifier(logger)
	}

	n, err := NewAMQPNotifier(cfg, logger)
	if err != nil {
		logger.Warn("Notify: broker unavailable, using log notifier", "error", err)
		return NewLogNotifier(logger)
	}

	logger.Info("Notify: publishing order confirmations", "exchange", cfg.Exchange)
	return n
}
