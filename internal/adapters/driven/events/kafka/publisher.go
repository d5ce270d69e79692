// Package kafka publishes document lifecycle events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.EventPublisher = (*Publisher)(nil)

// messageWriter is the part of kafka.Writer the publisher needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher implements driven.EventPublisher using kafka-go
type Publisher struct {
	writer messageWriter
}

// NewPublisher creates a publisher writing to topic on the given brokers
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}}
}

// Publish writes the event keyed by document ID so a document's events stay ordered
func (p *Publisher) Publish(ctx context.Context, event *domain.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.DocumentID),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Close flushes pending messages
func (p *Publisher) Close() error {
	return p.writer.Close()
}
