package events

import (
	"context"
	"errors"
	"paddock/pkg/logger"
	"sync"

	"github.com/segmentio/kafka-go"
)

// HandlerFunc processes one consumed message. Returning an error leaves the
// offset uncommitted so the message is redelivered.
type HandlerFunc func(ctx context.Context, msg Message) error

type Consumer struct {
	reader *kafka.Reader
	log    *logger.Logger
	closed bool
	mu     sync.Mutex
	wg     sync.WaitGroup
}

func NewConsumer(brokers []string, topic, groupID string, log *logger.Logger) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if topic == "" {
		return nil, ErrNoTopic
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.Error("kafka consumer error", "detail", msg)
		}),
	})

	return &Consumer{reader: reader, log: log}, nil
}

// Start consumes until ctx is cancelled or Close is called.
func (c *Consumer) Start(ctx context.Context, handler HandlerFunc) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			kafkaMsg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				c.mu.Lock()
				closed := c.closed
				c.mu.Unlock()
				if closed {
					return
				}
				c.log.Error("Failed to fetch message", "error", err)
				continue
			}

			msg := Message{
				Key:       string(kafkaMsg.Key),
				Value:     kafkaMsg.Value,
				Headers:   map[string]string{},
				Timestamp: kafkaMsg.Time,
			}
			for _, h := range kafkaMsg.Headers {
				msg.Headers[h.Key] = string(h.Value)
			}

			if err := handler(ctx, msg); err != nil {
				c.log.Error("Message handler failed, leaving offset uncommitted",
					"key", msg.Key,
					"error", err,
				)
				continue
			}

			if err := c.reader.CommitMessages(ctx, kafkaMsg); err != nil {
				c.log.Error("Failed to commit offset", "key", msg.Key, "error", err)
			}
		}
	}()
}

func (c *Consumer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.reader.Close()
	c.wg.Wait()
	return err
}
