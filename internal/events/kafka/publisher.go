package kafka

import (
	"context"
	"encoding/json"

	"github.com/ledgerkeeper/ledger_keeper_app/internal/core/domain"
	portssvc "github.com/ledgerkeeper/ledger_keeper_app/internal/core/ports/services"
	"github.com/segmentio/kafka-go"
)

// Publisher emits entry mutation events to a Kafka topic. Messages are keyed
// by account id so all events of one account land on one partition, in order.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
	}
}

var _ portssvc.EventPublisher = (*Publisher)(nil)

// PublishEntryMutation writes one event.
func (p *Publisher) PublishEntryMutation(ctx context.Context, event domain.EntryMutationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.AccountID),
		Value: data,
	})
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
