// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "places_provider_requests_total",
			Help: "Requests sent to the places provider by operation and provider status",
		},
		[]string{"operation", "status"},
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "places_provider_request_duration_seconds",
			Help:    "Latency of places provider requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	GeocodeAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "business_search_geocode_attempts",
			Help:    "Number of query variants issued per location resolution",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
	)

	DetailFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "business_search_detail_fallbacks_total",
			Help: "Business records built from search fields because the details fetch failed",
		},
	)
)
