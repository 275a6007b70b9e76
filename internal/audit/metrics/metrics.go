package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics of the audit engine.
type Metrics struct {
	RecordsWritten         *prometheus.CounterVec
	AppendFailures         prometheus.Counter
	RelationLookupFailures prometheus.Counter
	StreamDropped          prometheus.Counter
	StreamPublished        prometheus.Counter
	StreamFailures         prometheus.Counter
}

// New creates and registers all audit engine metrics.
func New() *Metrics {
	return &Metrics{
		RecordsWritten: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gatehouse_audit_records_written_total",
			Help: "Total change records appended to the audit log, by action and source.",
		}, []string{"action", "source"}),
		AppendFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatehouse_audit_append_failures_total",
			Help: "Total failed appends to the audit log store.",
		}),
		RelationLookupFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatehouse_audit_relation_lookup_failures_total",
			Help: "Total relation resolutions that failed and yielded no items.",
		}),
		StreamDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatehouse_audit_stream_dropped_total",
			Help: "Total records dropped from the async stream because the sink was full.",
		}),
		StreamPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatehouse_audit_stream_published_total",
			Help: "Total records handed to the stream publisher.",
		}),
		StreamFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatehouse_audit_stream_failures_total",
			Help: "Total stream publish attempts that reported an error.",
		}),
	}
}
