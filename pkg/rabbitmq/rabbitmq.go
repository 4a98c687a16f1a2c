package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// ErrClosed is returned when the client is used after Close.
var ErrClosed = errors.New("rabbitmq client is closed")

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string
	logger   *zap.Logger

	// amqp.Channel is not safe for concurrent publishing.
	mu sync.Mutex
}

// Config holds RabbitMQ connection details. Events are published on a topic
// exchange and the queue is bound to every routing key of it. Rejected
// messages go to the fanout exchange "<Exchange>.dlx" and land in
// "<Queue>.dead".
type Config struct {
	URL      string
	Exchange string
	Queue    string
}

// NewClient connects to RabbitMQ and declares the exchanges, the queues and
// their bindings.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declare(ch, cfg); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger = logger.Named("rabbitmq")
	logger.Info("connected", zap.String("exchange", cfg.Exchange), zap.String("queue", cfg.Queue))

	return &Client{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		queue:    cfg.Queue,
		logger:   logger,
	}, nil
}

// deadLetterExchange receives messages the consumer rejects.
func (cfg Config) deadLetterExchange() string { return cfg.Exchange + ".dlx" }

// deadLetterQueue keeps rejected messages for inspection.
func (cfg Config) deadLetterQueue() string { return cfg.Queue + ".dead" }

// queueArgs routes nacked messages of the main queue to the dead letter exchange.
func (cfg Config) queueArgs() amqp.Table {
	return amqp.Table{"x-dead-letter-exchange": cfg.deadLetterExchange()}
}

func declare(ch *amqp.Channel, cfg Config) error {
	for _, ex := range []struct{ name, kind string }{
		{cfg.Exchange, amqp.ExchangeTopic},
		{cfg.deadLetterExchange(), amqp.ExchangeFanout},
	} {
		if err := ch.ExchangeDeclare(
			ex.name, // name
			ex.kind, // kind
			true,    // durable
			false,   // auto-deleted
			false,   // internal
			false,   // no-wait
			nil,     // arguments
		); err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", ex.name, err)
		}
	}

	for _, q := range []struct {
		name, exchange, key string
		args                amqp.Table
	}{
		{cfg.deadLetterQueue(), cfg.deadLetterExchange(), "", nil},
		{cfg.Queue, cfg.Exchange, "#", cfg.queueArgs()},
	} {
		if _, err := ch.QueueDeclare(
			q.name, // name
			true,   // durable
			false,  // delete when unused
			false,  // exclusive
			false,  // no-wait
			q.args, // arguments
		); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", q.name, err)
		}
		if err := ch.QueueBind(q.name, q.key, q.exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", q.name, err)
		}
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
		c.channel = nil
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
		c.conn = nil
	}
	return errors.Join(errs...)
}

// Publish sends a persistent JSON message to the exchange under routingKey.
func (c *Client) Publish(ctx context.Context, routingKey string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel == nil {
		return ErrClosed
	}

	err := c.channel.Publish(
		c.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}
	return nil
}

// MessageHandler processes one delivery. Returning an error nacks the message.
type MessageHandler func(msg amqp.Delivery) error

// Consume delivers messages from the queue to handler until ctx is done or
// the channel closes. Failed messages are dead-lettered rather than
// requeued so a poison message cannot loop forever.
func (c *Client) Consume(ctx context.Context, handler MessageHandler) error {
	c.mu.Lock()
	if c.channel == nil {
		c.mu.Unlock()
		return ErrClosed
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
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("waiting for events", zap.String("queue", c.queue))

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			handle(c.logger, msg, handler)
		}
	}
}

// acknowledger is the settling half of amqp.Delivery.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func handle(logger *zap.Logger, msg amqp.Delivery, handler MessageHandler) {
	settle(logger, msg.DeliveryTag, msg, handler(msg))
}

func settle(logger *zap.Logger, tag uint64, ack acknowledger, handlerErr error) {
	if handlerErr != nil {
		logger.Warn("failed to process message", zap.Uint64("delivery_tag", tag), zap.Error(handlerErr))
		if err := ack.Nack(false, false); err != nil {
			logger.Error("failed to nack message", zap.Uint64("delivery_tag", tag), zap.Error(err))
		}
		return
	}
	if err := ack.Ack(false); err != nil {
		logger.Error("failed to ack message", zap.Uint64("delivery_tag", tag), zap.Error(err))
	}
}
