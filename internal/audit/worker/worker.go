// Package worker drains written change records from the engine's event sink
// and forwards them to a stream publisher. It keeps the write path synchronous
// and the fan-out async.
package worker

import (
	"context"
	"log/slog"

	"gatehouse/internal/audit"
	"gatehouse/internal/audit/metrics"
)

// Sink receives records for downstream fan-out.
type Sink interface {
	Publish(ctx context.Context, record audit.ChangeRecord) error
}

// Worker consumes change records from a channel and hands them to the sink.
// Sink errors are logged and skipped: fan-out is best-effort, records are
// already durable in the store by the time they arrive here.
type Worker struct {
	sink    Sink
	inbox   <-chan audit.ChangeRecord
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(sink Sink, inbox <-chan audit.ChangeRecord, logger *slog.Logger, m *metrics.Metrics) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{sink: sink, inbox: inbox, logger: logger, metrics: m}
}

// Run blocks until the context is canceled, forwarding records as they
// arrive.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case record := <-w.inbox:
			if err := w.sink.Publish(ctx, record); err != nil {
				if w.metrics != nil {
					w.metrics.StreamFailures.Inc()
				}
				w.logger.WarnContext(ctx, "record fan-out failed",
					"record_id", record.ID,
					"entity_type", record.Entity.Type,
					"error", err,
				)
				continue
			}
			if w.metrics != nil {
				w.metrics.StreamPublished.Inc()
			}
		}
	}
}
