// Package kafka publishes committed ledger postings to a Kafka topic for
// downstream consumers (reporting, notifications, reconciliation).
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"

	"tesoro/internal/domain/ledger"
)

// Publisher implements ledger.EventPublisher over a Kafka topic. Messages
// are keyed by fund id so all postings of one fund land on one partition,
// preserving their order for consumers.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a publisher writing to the given brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
	}
}

// PublishEntryPosted emits one message per committed ledger entry.
func (p *Publisher) PublishEntryPosted(ctx context.Context, event ledger.PostedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal posted event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(event.FundID, 10)),
		Value: data,
	})
	if err != nil {
		return fmt.Errorf("failed to publish posted event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
