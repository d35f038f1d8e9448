package events

import (
	"context"
	"time"

	"catalogapi/internal/logger"

	"github.com/segmentio/kafka-go"
)

// Handler processes one decoded event.
type Handler func(ctx context.Context, e Event) error

type Subscriber struct {
	reader *kafka.Reader
	logger *logger.Logger
}

func NewSubscriber(brokers []string, topic, groupID string, log *logger.Logger) *Subscriber {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topic:          topic,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})
	return &Subscriber{reader: reader, logger: log}
}

// Run reads events until ctx is cancelled. Undecodable messages and handler
// failures are logged and skipped.
func (s *Subscriber) Run(ctx context.Context, handle Handler) error {
	for {
		message, err := s.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error("Failed to read message: %v", err)
			continue
		}

		s.logger.Debug("Received message: %s", string(message.Value))

		event, err := Decode(message.Value)
		if err != nil {
			s.logger.Error("Failed to parse event: %v", err)
			continue
		}

		if err := handle(ctx, event); err != nil {
			s.logger.Error("Failed to process event %s (%s): %v", event.ID, event.Type, err)
			continue
		}

		s.logger.Debug("Event %s processed", event.ID)
	}
}

func (s *Subscriber) Close() error {
	return s.reader.Close()
}
