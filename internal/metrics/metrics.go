package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	RunCount            prometheus.Counter
	RowSuccesses        prometheus.Counter
	RowFailures         prometheus.Counter
	SourceFailures      *prometheus.CounterVec
	TranscriptsAppended prometheus.Counter
	ThreadsAppended     prometheus.Counter
	RunDuration         prometheus.Histogram
	TrackedRows         prometheus.Gauge
}

// NewMetrics creates new Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		RunCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opportunity_sync_run_count",
			Help: "Total number of sync runs started",
		}),
		RowSuccesses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opportunity_sync_row_successes",
			Help: "Total number of opportunity rows processed successfully",
		}),
		RowFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opportunity_sync_row_failures",
			Help: "Total number of opportunity rows that ended in error",
		}),
		SourceFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "opportunity_sync_source_failures",
			Help: "Total number of isolated per-source fetch failures",
		}, []string{"source"}),
		TranscriptsAppended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opportunity_sync_transcripts_appended",
			Help: "Total number of transcripts appended to documents",
		}),
		ThreadsAppended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opportunity_sync_threads_appended",
			Help: "Total number of email threads appended to documents",
		}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "opportunity_sync_run_duration_seconds",
			Help:    "Time spent on one full sync run",
			Buckets: prometheus.DefBuckets,
		}),
		TrackedRows: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "opportunity_sync_tracked_rows",
			Help: "Number of opportunity rows in the configuration store",
		}),
	}
}
