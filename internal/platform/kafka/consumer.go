// Package kafka bridges the message bus to the in-process event emitter:
// domain events published by the main application land on a topic and are
// replayed into the dispatcher. Any instance in a consumer group can pick up
// an event and deliver to the users connected to it.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/taskflow/notify/internal/domain"
	"github.com/taskflow/notify/internal/events"
)

// Config holds the consumer settings.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Consumer reads notification events from a Kafka topic and emits them
// through the event emitter. Malformed messages are logged and skipped so
// one bad producer cannot wedge the partition.
type Consumer struct {
	reader  *kafkago.Reader
	emitter events.Emitter
	logger  *slog.Logger
}

// NewConsumer creates a consumer-group reader for the configured topic.
func NewConsumer(cfg Config, emitter events.Emitter, logger *slog.Logger) *Consumer {
	if emitter == nil {
		panic("emitter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})

	return &Consumer{
		reader:  reader,
		emitter: emitter,
		logger: logger.With(
			slog.String("component", "kafka_consumer"),
			slog.String("topic", cfg.Topic)),
	}
}

// Run consumes messages until the context is canceled. Offsets are committed
// after the emitter has seen the event; delivery failures inside the fan-out
// are contained there and never hold up the partition.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("kafka consumer starting")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("kafka consumer stopping")
				return nil
			}
			return fmt.Errorf("failed to fetch message: %w", err)
		}

		c.handleMessage(ctx, msg.Value)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("failed to commit offset: %w", err)
		}
	}
}

// handleMessage decodes and emits one event payload.
func (c *Consumer) handleMessage(ctx context.Context, payload []byte) {
	event, err := DecodeEvent(payload)
	if err != nil {
		c.logger.Warn("skipping undecodable event message",
			slog.String("error", err.Error()))
		return
	}

	if err := c.emitter.Emit(ctx, event); err != nil {
		// Already logged with context by the emitter; recorded here so bus
		// problems are visible next to the consumer's own logs.
		c.logger.Warn("event emission reported failure",
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
	}
}

// Close releases the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

// DecodeEvent parses and validates a notification event payload from the bus.
func DecodeEvent(payload []byte) (*domain.NotificationEvent, error) {
	var event domain.NotificationEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event payload: %w", err)
	}
	return &event, nil
}
