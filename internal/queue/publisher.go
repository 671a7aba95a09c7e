package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends events to a durable queue on the default exchange.  A
// connection is dialed per publish.
type Publisher struct {
	url   string
	queue string
	log   *zap.Logger
}

func NewPublisher(url, queueName string, log *zap.Logger) *Publisher {
	return &Publisher{url: url, queue: queueName, log: log}
}

// Publish marshals ev and publishes it as a persistent message.  Failures
// are returned, not logged; the caller decides whether they matter.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	if err := p.publish(ctx, ev); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	p.log.Debug("event published",
		zap.String("type", ev.Type),
		zap.Uint64("booking_id", ev.BookingID))
	return nil
}

func (p *Publisher) publish(ctx context.Context, ev Event) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := declare(ch, p.queue); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Type:         ev.Type,
			Body:         body,
		})
}

// declare makes sure the durable queue exists; it is idempotent.
func declare(ch *amqp.Channel, name string) error {
	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	return nil
}
