package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	publishAttempts = 3
	publishBackoff  = 500 * time.Millisecond
)

// Producer publishes synchronously with a bounded retry so a transient broker
// hiccup does not surface as a lost event. The Hash balancer keeps every
// message with the same key on the same partition.
type Producer struct {
	w *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic string, key, value []byte) error {
	msg := kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
		Time:  time.Now(),
	}

	var err error
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		if err = p.w.WriteMessages(ctx, msg); err == nil {
			return nil
		}
		zap.L().Warn("kafka publish failed",
			zap.String("topic", topic),
			zap.Int("attempt", attempt),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(publishBackoff):
		}
	}
	return err
}

func (p *Producer) Close() error { return p.w.Close() }
