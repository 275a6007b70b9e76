// Package stream publishes written change records to a Kafka topic so
// downstream consumers (retention, reporting) can fan out. Publishing is
// best-effort and fully decoupled from the synchronous store append.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/twmb/franz-go/pkg/kgo"

	"gatehouse/internal/audit"
)

// Publisher writes change records to one topic, keyed by entity reference so
// records for the same entity land in one partition in append order.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

func NewPublisher(brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{client: client, topic: topic, logger: logger}, nil
}

// Publish serializes one record and hands it to the async producer. Delivery
// errors are logged, not returned: by the time a record reaches the stream it
// is already durable in the store.
func (p *Publisher) Publish(ctx context.Context, record audit.ChangeRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal change record %d: %w", record.ID, err)
	}

	key := record.Entity.Type + "/" + strconv.FormatInt(record.Entity.ID, 10)
	p.client.Produce(ctx, &kgo.Record{
		Topic: p.topic,
		Key:   []byte(key),
		Value: payload,
	}, func(r *kgo.Record, err error) {
		if err != nil {
			p.logger.Warn("stream publish failed",
				"topic", p.topic,
				"record_id", record.ID,
				"error", err,
			)
		}
	})
	return nil
}

// Close flushes pending produces and releases the client.
func (p *Publisher) Close() {
	p.client.Close()
}
