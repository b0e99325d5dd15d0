package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SoftDeletes records soft-delete operations per resource.
	SoftDeletes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trashbin_soft_deletes_total",
			Help: "Total number of records moved to the trash",
		},
		[]string{"resource"},
	)

	// Restores records restore operations per resource.
	Restores = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trashbin_restores_total",
			Help: "Total number of records restored from the trash",
		},
		[]string{"resource"},
	)

	// Purges records permanent deletions per resource and trigger (api|sweeper).
	Purges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trashbin_purges_total",
			Help: "Total number of records permanently deleted",
		},
		[]string{"resource", "trigger"},
	)

	// TrashedRecords tracks how many soft-deleted records each resource holds.
	TrashedRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trashbin_trashed_records",
			Help: "Number of records currently in the trash",
		},
		[]string{"resource"},
	)

	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trashbin_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trashbin_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
