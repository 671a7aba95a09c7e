package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// HandlerFunc processes one decoded event.  Returning an error rejects the
// message without requeueing it.
type HandlerFunc func(ctx context.Context, ev Event) error

// Consumer reads events from the notification queue and hands them to a
// HandlerFunc, reconnecting with exponential backoff when the broker goes
// away.
type Consumer struct {
	url      string
	queue    string
	handle   HandlerFunc
	log      *zap.Logger
	prefetch int
}

func NewConsumer(url, queueName string, handle HandlerFunc, log *zap.Logger) *Consumer {
	return &Consumer{url: url, queue: queueName, handle: handle, log: log, prefetch: 50}
}

// Run consumes until ctx is cancelled.  It only returns ctx.Err().
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("dial broker failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		c.log.Warn("set QoS failed", zap.Error(err))
	}
	if err := declare(ch, c.queue); err != nil {
		return err
	}
	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.deliver(ctx, d.Body); err != nil {
				c.log.Error("handle message failed", zap.Error(err))
				_ = d.Nack(false, false) // do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) deliver(ctx context.Context, body []byte) error {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return c.handle(ctx, ev)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// FileSink returns a HandlerFunc that appends one human-readable line per
// event to <dir>/notifications.log and logs the event.  Email and push
// delivery hook in here.
func FileSink(dir string, log *zap.Logger) HandlerFunc {
	return func(_ context.Context, ev Event) error {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
		f, err := os.OpenFile(filepath.Join(dir, "notifications.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()

		if _, err := f.WriteString(FormatLine(ev)); err != nil {
			return fmt.Errorf("write log: %w", err)
		}
		log.Info("notification delivered",
			zap.String("type", ev.Type),
			zap.Uint64("booking_id", ev.BookingID),
			zap.Uint64("user_id", ev.UserID))
		return nil
	}
}

// FormatLine renders ev as a single log line ending in a newline.
func FormatLine(ev Event) string {
	line := fmt.Sprintf("[%s] %s | booking_id=%d | user_id=%d | tour_id=%d",
		ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.BookingID, ev.UserID, ev.TourID)
	if ev.Amount > 0 {
		line += fmt.Sprintf(" | amount=%d", ev.Amount)
	}
	if ev.Reason != "" {
		line += fmt.Sprintf(" | reason=%q", ev.Reason)
	}
	return line + "\n"
}
