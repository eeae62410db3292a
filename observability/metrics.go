// Package observability exposes the sync client counters.
// Every Metrics owns its registry so independent controllers never share state.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "chatsync"

type Metrics struct {
	Registry *prometheus.Registry

	SnapshotsApplied  prometheus.Counter
	SnapshotsStale    prometheus.Counter
	CacheFailures     prometheus.Counter
	SendsTotal        *prometheus.CounterVec
	OrphanedBlobs     prometheus.Counter
	ListSize          prometheus.Gauge
	ViewEventsDropped prometheus.Counter
	InvalidMessages   prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		SnapshotsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_applied_total",
			Help:      "Remote snapshots that replaced the authoritative list.",
		}),
		SnapshotsStale: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_stale_total",
			Help:      "Remote snapshots discarded because a newer one was already applied.",
		}),
		CacheFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_failures_total",
			Help:      "Local cache reads or writes that failed and were absorbed.",
		}),
		SendsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sends_total",
			Help:      "Send operations by body kind and result.",
		}, []string{"kind", "result"}),
		OrphanedBlobs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphaned_blobs_total",
			Help:      "Uploads whose log append failed afterwards.",
		}),
		ListSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "authoritative_list_size",
			Help:      "Number of messages in the authoritative list.",
		}),
		ViewEventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_events_failed_total",
			Help:      "View events a sink failed to consume in time.",
		}),
		InvalidMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_messages_total",
			Help:      "Messages left out of a snapshot because they failed validation.",
		}),
	}
	m.Registry.MustRegister(
		m.SnapshotsApplied, m.SnapshotsStale, m.CacheFailures,
		m.SendsTotal, m.OrphanedBlobs, m.ListSize, m.ViewEventsDropped, m.InvalidMessages,
	)
	return m
}

// Send records the outcome of one send operation.
func (m *Metrics) Send(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.SendsTotal.WithLabelValues(kind, result).Inc()
}
