package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const routingKey = "notifications"

// publisher is the part of *amqp091.Channel the AMQP notifier uses.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// AMQP publishes every notification as JSON to a fanout exchange so other
// services (mailers, push gateways) can relay them.
type AMQP struct {
	conn     *amqp091.Connection
	channel  publisher
	exchange string
}

func NewAMQP(url, exchange string) (*AMQP, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQP{conn: conn, channel: ch, exchange: exchange}, nil
}

func (a *AMQP) Notify(ctx context.Context, n Notification) {
	body, err := json.Marshal(n)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode notification", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = a.channel.PublishWithContext(
		ctx,
		a.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    n.At,
			Body:         body,
		},
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish notification", "error", err, "exchange", a.exchange)
	}
}

func (a *AMQP) Close() error {
	if a.conn != nil {
		return a.conn.Close()
	}

	return nil
}
