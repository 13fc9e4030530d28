package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all metrics exported by a build or query session.
type Metrics struct {
	EntriesBuilt   prometheus.Counter
	ChunksFlushed  prometheus.Counter
	MergeRounds    prometheus.Counter
	BuildLatency   prometheus.Histogram
	QueryOps       *prometheus.CounterVec
	QueryErrors    *prometheus.CounterVec
	QueryLatency   *prometheus.HistogramVec
}

// NewMetrics creates a fresh metrics instance, registered against the
// default Prometheus registry.
func NewMetrics() *Metrics {
	return &Metrics{
		EntriesBuilt: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bstreefile_entries_built_total",
			Help: "Total entries written by a build pass",
		}),
		ChunksFlushed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bstreefile_sort_chunks_flushed_total",
			Help: "Total in-memory chunks flushed to temporary files by the external sorter",
		}),
		MergeRounds: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bstreefile_sort_merge_rounds_total",
			Help: "Total k-way merge rounds performed by the external sorter",
		}),
		BuildLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "bstreefile_build_latency_seconds",
			Help: "End-to-end build latency",
		}),
		QueryOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bstreefile_query_ops_total",
			Help: "Total query operations, by kind",
		}, []string{"op"}),
		QueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bstreefile_query_errors_total",
			Help: "Total query errors, by kind",
		}, []string{"op"}),
		QueryLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name: "bstreefile_query_latency_seconds",
			Help: "Query latency, by kind",
		}, []string{"op"}),
	}
}
