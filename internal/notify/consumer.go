package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer reads welcome messages from WelcomeQueue and hands them to a Mailer
type Consumer struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	mailer Mailer
	logger *zap.Logger
}

// NewConsumer declares and binds WelcomeQueue
func NewConsumer(url string, mailer Mailer, logger *zap.Logger) (*Consumer, error) {
	conn, ch, err := dial(url)
	if err != nil {
		return nil, err
	}

	q, err := ch.QueueDeclare(
		WelcomeQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err == nil {
		err = ch.QueueBind(q.Name, RoutingKeyUserRegistered, ExchangeName, false, nil)
	}
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set up queue %s: %w", WelcomeQueue, err)
	}

	logger.Info("Consumer initialized",
		zap.String("queue", WelcomeQueue),
		zap.String("routing_key", RoutingKeyUserRegistered),
		zap.String("exchange", ExchangeName),
	)

	return &Consumer{conn: conn, ch: ch, mailer: mailer, logger: logger}, nil
}

// Run consumes until ctx is cancelled or the channel closes
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.ch.ConsumeWithContext(ctx,
		WelcomeQueue,
		"notifier",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	for {
		select {
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handle(ctx, d)
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Consumer) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// handle acks on success, drops undecodable payloads and requeues a
// failed delivery only the first time it is seen
func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var msg Welcome
	if err := json.Unmarshal(d.Body, &msg); err != nil || msg.Email == "" {
		c.logger.Error("dropping malformed welcome message", zap.Int("size", len(d.Body)), zap.Error(err))
		if err := d.Nack(false, false); err != nil {
			c.logger.Error("failed to nack message", zap.Error(err))
		}
		return
	}

	if err := c.mailer.Send(ctx, msg); err != nil {
		requeue := !d.Redelivered
		c.logger.Error("failed to deliver welcome mail",
			zap.String("user_id", msg.UserID),
			zap.Bool("requeue", requeue),
			zap.Error(err),
		)
		if err := d.Nack(false, requeue); err != nil {
			c.logger.Error("failed to nack message", zap.Error(err))
		}
		return
	}

	if err := d.Ack(false); err != nil {
		c.logger.Error("failed to ack message", zap.Error(err))
		return
	}
	c.logger.Info("welcome mail delivered", zap.String("user_id", msg.UserID))
}
