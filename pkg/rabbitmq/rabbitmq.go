package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/streadway/amqp"
)

const (
	// DefaultQueue receives every product event published on the exchange.
	DefaultQueue = "inventory_events"
	bindingKey   = "product.#"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL      string
	Exchange string
	Queue    string
}

// NewClient connects to RabbitMQ, declares a durable topic exchange and
// binds the events queue to it.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Exchange == "" {
		cfg.Exchange = "inventario"
	}
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declare(ch, cfg.Exchange, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Client{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		queue:    cfg.Queue,
	}, nil
}

func declare(ch *amqp.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	if err := ch.QueueBind(queue, bindingKey, exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", queue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// PublishJSON marshals v and publishes it on the exchange under routingKey.
func (c *Client) PublishJSON(routingKey string, v interface{}) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	msg, err := newMessage(v, time.Now())
	if err != nil {
		return err
	}

	if err := c.channel.Publish(
		c.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		msg,
	); err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}
	return nil
}

func newMessage(v interface{}, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal event to JSON: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    uuid.NewString(),
		DeliveryMode: amqp.Persistent,
		Timestamp:    now,
		Body:         body,
	}, nil
}

// Consume delivers every message on the events queue to handler in a
// separate goroutine. A handler error nacks the message without requeueing
// it, so a poison message cannot loop forever.
func (c *Client) Consume(handler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue, // queue
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			if err := handler(msg); err != nil {
				_ = msg.Nack(false, false)
				continue
			}
			_ = msg.Ack(false)
		}
	}()

	return nil
}
