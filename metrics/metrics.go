package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_http_requests_total",
			Help: "Total number of HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sales_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// ComputeDuration times the in-memory aggregation ("report") and
	// insight ("insights") passes, excluding the database fetch.
	ComputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sales_compute_duration_seconds",
			Help:    "Duration of report and insight computation in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"kind"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_cache_lookups_total",
			Help: "Report cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	RowsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sales_rows_ingested_total",
			Help: "Total number of sale rows stored by uploads and imports",
		},
	)

	Exports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_exports_total",
			Help: "Completed exports by format",
		},
		[]string{"format"},
	)
)
