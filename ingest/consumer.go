// Package ingest consumes match status/score updates published by the
// external results-sync process and feeds them into the result service.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/pollafutbolera/polla-engine/services"
)

const (
	reconnectInitialDelay = 1 * time.Second
	reconnectMaxDelay     = 60 * time.Second
)

type Consumer struct {
	url           string
	queue         string
	resultService services.ResultService
	logger        *slog.Logger

	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewConsumer(url, queue string, resultService services.ResultService, logger *slog.Logger) *Consumer {
	return &Consumer{
		url:           url,
		queue:         queue,
		resultService: resultService,
		logger:        logger,
	}
}

// Run consumes until the context is cancelled, reconnecting with
// exponential backoff when the broker drops the connection.
func (c *Consumer) Run(ctx context.Context) {
	delay := reconnectInitialDelay
	for {
		if ctx.Err() != nil {
			return
		}
		err := c.connectAndConsume(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Error("results consumer disconnected", slog.Any("error", err), slog.Duration("retry_in", delay))
		}
		select {
		case <-ctx.Done():
			c.close()
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > reconnectMaxDelay {
			delay = reconnectMaxDelay
		}
	}
}

func (c *Consumer) connectAndConsume(ctx context.Context) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return err
	}
	c.conn = conn

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	c.channel = channel

	if _, err := channel.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		c.close()
		return err
	}
	deliveries, err := channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		c.close()
		return err
	}

	c.logger.Info("results consumer connected", slog.String("queue", c.queue))

	connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))
	for {
		select {
		case <-ctx.Done():
			c.close()
			return ctx.Err()
		case amqpErr := <-connClosed:
			if amqpErr != nil {
				return amqpErr
			}
			return errors.New("amqp connection closed")
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("amqp delivery channel closed")
			}
			c.handle(ctx, delivery)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, delivery amqp.Delivery) {
	var update services.ResultUpdate
	if err := json.Unmarshal(delivery.Body, &update); err != nil {
		c.logger.Error("dropping malformed result message", slog.Any("error", err))
		delivery.Nack(false, false)
		return
	}

	if err := c.resultService.ApplyResult(ctx, update); err != nil {
		// ApplyResult is idempotent, so requeueing a transient failure is
		// safe. Permanent errors (unknown match, bad payload) are dropped.
		transient := !errors.Is(err, services.ErrMatchNotFound) && !errors.Is(err, services.ErrValidationFailed)
		c.logger.Error("failed to apply result update",
			slog.Int("match_id", update.MatchID),
			slog.Bool("requeue", transient),
			slog.Any("error", err))
		delivery.Nack(false, transient)
		return
	}
	delivery.Ack(false)
}

func (c *Consumer) close() {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}
