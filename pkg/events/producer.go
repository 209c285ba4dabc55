package events

import (
	"context"
	"paddock/pkg/logger"
	"sync"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
)

// Producer wraps a kafka-go writer. A nil *Producer is a valid no-op
// publisher, so services run without a broker in development.
type Producer struct {
	writer *kafka.Writer
	log    *logger.Logger
	closed bool
	mu     sync.RWMutex
}

func NewProducer(brokers []string, topic string, log *logger.Logger) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if topic == "" {
		return nil, ErrNoTopic
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // hash by key keeps per-booking ordering
		RequiredAcks: kafka.RequireAll,
		Compression:  compress.Snappy,
		MaxAttempts:  3,
		Logger:       kafka.LoggerFunc(func(msg string, args ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.Error("kafka producer error", "detail", msg)
		}),
	}

	return &Producer{writer: writer, log: log}, nil
}

func (p *Producer) Publish(ctx context.Context, msg Message) error {
	if p == nil {
		return nil
	}

	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return ErrProducerClosed
	}

	if msg.Key == "" {
		return ErrEmptyKey
	}
	if len(msg.Value) == 0 {
		return ErrEmptyValue
	}

	kafkaMsg := kafka.Message{
		Key:   []byte(msg.Key),
		Value: msg.Value,
		Time:  msg.Timestamp,
	}
	for k, v := range msg.Headers {
		kafkaMsg.Headers = append(kafkaMsg.Headers, kafka.Header{
			Key:   k,
			Value: []byte(v),
		})
	}

	return p.writer.WriteMessages(ctx, kafkaMsg)
}

// PublishEvent marshals payload and publishes it keyed by key. Publish
// failures are logged, not returned: event emission never fails the
// request that triggered it.
func (p *Producer) PublishEvent(ctx context.Context, key string, payload any, eventType string) {
	if p == nil {
		return
	}
	msg, err := NewMessage(key, payload, eventType)
	if err != nil {
		p.log.Error("Failed to encode event", "event_type", eventType, "key", key, "error", err)
		return
	}
	if err := p.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish event", "event_type", eventType, "key", key, "error", err)
	}
}

func (p *Producer) Close() error {
	if p == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}
