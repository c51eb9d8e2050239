package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	kafkago "github.com/segmentio/kafka-go"
)

// Handler processes one consumed message. A non-nil error is retried.
type Handler func(ctx context.Context, msg Message) error

// handlerRetries bounds redelivery of a failing message before it is
// skipped so one bad record cannot stall the partition.
const handlerRetries = 3

// Consumer reads a topic as part of a consumer group and commits each
// offset once the handler has accepted the message or given up on it.
type Consumer struct {
	reader  *kafkago.Reader
	handler Handler
	logger  *slog.Logger

	newBackOff func() backoff.BackOff
}

func NewConsumer(cfg Config, topic string, handler Handler, logger *slog.Logger) *Consumer {
	rc := kafkago.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       topic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    1,
		MaxBytes:    10 << 20,
		StartOffset: kafkago.LastOffset,
	}
	if cfg.FromBeginning {
		rc.StartOffset = kafkago.FirstOffset
	}
	if cfg.secured() {
		rc.Dialer = cfg.dialer()
	}
	return &Consumer{
		reader:  kafkago.NewReader(rc),
		handler: handler,
		logger:  logger.With("topic", topic, "group", cfg.ConsumerGroup),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return backoff.WithMaxRetries(b, handlerRetries)
		},
	}
}

// Start consumes until ctx is cancelled, which is not an error.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")
	for {
		km, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.logger.Info("consumer stopped")
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}
		c.dispatch(ctx, fromKafka(km))
		if ctx.Err() != nil {
			return nil
		}
		if err := c.reader.CommitMessages(ctx, km); err != nil {
			c.logger.Warn("commit failed", "partition", km.Partition, "offset", km.Offset, "error", err)
		}
	}
}

// dispatch runs the handler with retries. Exhausted messages are logged and
// skipped.
func (c *Consumer) dispatch(ctx context.Context, msg Message) {
	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		return c.handler(ctx, msg)
	}, backoff.WithContext(c.newBackOff(), ctx), func(err error, wait time.Duration) {
		c.logger.Debug("handler failed, retrying",
			"partition", msg.Partition, "offset", msg.Offset, "attempt", attempt, "wait", wait, "error", err)
	})
	if err != nil && ctx.Err() == nil {
		c.logger.Error("message skipped after retries",
			"partition", msg.Partition, "offset", msg.Offset, "attempts", attempt, "error", err)
	}
}

func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("close kafka reader: %w", err)
	}
	return nil
}
