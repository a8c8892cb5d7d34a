package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// ReportViewedHandler processes one decoded event. Returning an error
// requeues the delivery once, after requeueDelay; a redelivered message
// that fails again is dropped.
type ReportViewedHandler func(ctx context.Context, msg *ReportViewedMessage) error

var errDeliveriesClosed = errors.New("message channel closed")

var requeueDelay = 2 * time.Second

// consumerChannel returns the live channel, dialling inline when there is
// none. Only the worker consumes, never a request path.
func (c *Client) consumerChannel() (*amqp091.Channel, error) {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch != nil && !ch.IsClosed() {
		return ch, nil
	}
	conn, ch, err := c.dial()
	if err != nil {
		return nil, err
	}
	c.attach(conn, ch)
	return ch, nil
}

// ConsumeReportViewed delivers queued report viewed events to handler until
// ctx is cancelled or the broker closes the channel. Deliveries are acked
// manually; messages that cannot be decoded are dropped.
func (c *Client) ConsumeReportViewed(ctx context.Context, handler ReportViewedHandler) error {
	ch, err := c.consumerChannel()
	if err != nil {
		return err
	}

	msgs, err := ch.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming report viewed messages", "queue", c.queueName)
	return consume(ctx, msgs, handler)
}

func consume(ctx context.Context, msgs <-chan amqp091.Delivery, handler ReportViewedHandler) error {
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errDeliveriesClosed
			}

			msg, err := ReportViewedMessageFromJSON(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to unmarshal message", "error", err)
				_ = delivery.Nack(false, false)
				continue
			}

			if err := handler(ctx, msg); err != nil {
				slog.ErrorContext(ctx, "Failed to handle message",
					"error", err,
					"report_type", msg.ReportType,
					"redelivered", delivery.Redelivered)
				if delivery.Redelivered {
					_ = delivery.Nack(false, false)
					continue
				}
				select {
				case <-ctx.Done():
				case <-time.After(requeueDelay):
				}
				_ = delivery.Nack(false, true)
				continue
			}

			_ = delivery.Ack(false)
		}
	}
}
