package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/andikarachman/go-shop-events/internal/metrics"
)

// Handler returns nil only when the message was fully applied and the offset
// may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

const (
	handlerAttempts = 3
	handlerBackoff  = time.Second
	fetchBackoff    = 5 * time.Second
)

type dlqPublisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Consumer pulls messages sequentially: at most one handler invocation is in
// flight per consumer instance, so messages within a partition are applied in
// order. The offset is committed only after the handler succeeds or the
// message has been routed to the dead-letter topic. If even the dead-letter
// publish fails, Start returns with the offset uncommitted so a restarted
// reader redelivers the message; a crash in between means redelivery, never
// loss.
type Consumer struct {
	r        *kafka.Reader
	dlq      dlqPublisher
	dlqTopic string
	backoff  time.Duration
}

func NewConsumer(brokers []string, group string, topics []string, dlq *Producer, dlqTopic string) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		GroupTopics:    topics,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	return &Consumer{r: r, dlq: dlq, dlqTopic: dlqTopic, backoff: handlerBackoff}
}

func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			zap.L().Error("kafka fetch failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(fetchBackoff):
			}
			continue
		}

		if err := c.process(ctx, m, h); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// Neither applied nor dead-lettered: leave the offset where it is
			// and bail out, so the next reader incarnation redelivers.
			return err
		}

		if err := c.r.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			zap.L().Error("kafka commit failed",
				zap.String("topic", m.Topic),
				zap.Int64("offset", m.Offset),
				zap.Error(err))
		}
	}
}

// process returns nil once the message may be committed: either the handler
// applied it, or retries ran out and the raw message landed on the
// dead-letter topic.
func (c *Consumer) process(ctx context.Context, m kafka.Message, h Handler) error {
	var err error
	for attempt := 1; attempt <= handlerAttempts; attempt++ {
		if err = h(ctx, m); err == nil {
			return nil
		}
		zap.L().Warn("handler failed",
			zap.String("topic", m.Topic),
			zap.ByteString("key", m.Key),
			zap.Int("attempt", attempt),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.backoff):
		}
	}

	// Retries exhausted: park the raw message on the dead-letter topic so the
	// partition is not wedged but the adjustment is not silently dropped.
	if dlqErr := c.dlq.Publish(ctx, c.dlqTopic, m.Key, m.Value); dlqErr != nil {
		return fmt.Errorf("dead-letter publish for topic %s key %q: %w", m.Topic, m.Key, dlqErr)
	}
	metrics.EventsDeadLettered.Inc()
	zap.L().Error("message dead-lettered",
		zap.String("topic", m.Topic),
		zap.ByteString("key", m.Key),
		zap.Error(err))
	return nil
}
