package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics for the sync pipeline.
type Metrics struct {
	PushesTotal       prometheus.Counter
	PushFailuresTotal prometheus.Counter
	RecordsSynced     prometheus.Counter
	PendingChanges    prometheus.Gauge
	PushDuration      prometheus.Histogram
	ErrorsCount       *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics under the given namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		PushesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_pushes_total",
			Help:      "The total number of reconciliation pushes attempted",
		}),
		PushFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_push_failures_total",
			Help:      "The total number of reconciliation pushes that failed",
		}),
		RecordsSynced: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_records_synced_total",
			Help:      "The total number of records carried by successful pushes",
		}),
		PendingChanges: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_pending_changes",
			Help:      "Local mutations not yet confirmed pushed to the remote datastore",
		}),
		PushDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_push_duration_seconds",
			Help:      "Time taken by reconciliation pushes",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
