package kafka

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

type MessageHandler func(ctx context.Context, key, value []byte) error

type Consumer struct {
	reader *kafka.Reader
	logger zerolog.Logger
}

func NewConsumer(brokers []string, topic, groupID string, logger zerolog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{
		reader: reader,
		logger: logger.With().Str("component", "kafka-consumer").Str("topic", topic).Logger(),
	}
}

// Consume reads until ctx is cancelled. Handler errors are logged and the message is
// skipped.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.Error().Err(err).Msg("Error reading message")
				continue
			}

			if err := handler(ctx, msg.Key, msg.Value); err != nil {
				c.logger.Warn().Err(err).Str("key", string(msg.Key)).Int64("offset", msg.Offset).Msg("Error handling message")
			}
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
