// Package events carries catalog change notifications over kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
	ProductDeleted = "product.deleted"
	TermsUpdated   = "terms.updated"
)

type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	ProductID uint      `json:"product_id,omitempty"`
	ParentID  uint      `json:"parent_id,omitempty"`
	Taxonomy  string    `json:"taxonomy,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType string, productID, parentID uint) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ProductID: productID,
		ParentID:  parentID,
		Timestamp: time.Now().UTC(),
	}
}

// Key partitions events of one product family together.
func (e Event) Key() string {
	if e.ParentID != 0 {
		return strconv.FormatUint(uint64(e.ParentID), 10)
	}
	if e.ProductID != 0 {
		return strconv.FormatUint(uint64(e.ProductID), 10)
	}
	return e.Type
}

func Decode(value []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(value, &e); err != nil {
		return Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	if e.Type == "" {
		return Event{}, fmt.Errorf("event %q has no type", e.ID)
	}
	return e, nil
}

// Publisher sends events to the catalog topic.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}
	messages := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to encode event %s: %w", e.ID, err)
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(e.Key()),
			Value: data,
			Time:  e.Timestamp,
		})
	}
	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		return fmt.Errorf("failed to publish %d events: %w", len(messages), err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Discard drops every event. It backs tools that run without a broker.
type Discard struct{}

func (Discard) Publish(context.Context, ...Event) error { return nil }
func (Discard) Close() error                            { return nil }
