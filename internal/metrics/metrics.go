// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Embedding Queue Metrics
	EmbeddingJobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedding_jobs_processed_total",
			Help: "Total number of embedding jobs processed",
		},
		[]string{"kind", "outcome"}, // outcome: "completed", "retried", "failed", "skipped", "dry_run"
	)

	EmbeddingJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "embedding_job_duration_seconds",
			Help:    "Duration of a single embedding job in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"kind"},
	)

	EmbeddingQueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "embedding_queue_jobs",
			Help: "Current number of embedding jobs by status",
		},
		[]string{"status"},
	)

	EmbeddingBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedding_batches_total",
			Help: "Total number of embedding batches run",
		},
		[]string{"result"}, // result: "ok", "error", "empty"
	)

	EmbeddingBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "embedding_batch_size",
			Help:    "Number of jobs fetched per embedding batch",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 1000},
		},
	)

	EmbeddingStaleRecovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedding_stale_jobs_recovered_total",
			Help: "Total number of stale processing jobs recovered",
		},
		[]string{"to_status"},
	)

	// Ranking Metrics
	RankingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_requests_total",
			Help: "Total number of recommendation ranking requests",
		},
		[]string{"result"}, // result: "ok", "vector_not_ready", "user_not_found", "error"
	)

	RankingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranking_duration_seconds",
			Help:    "Duration of recommendation ranking in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	RankingCandidatesScored = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranking_candidates_scored",
			Help:    "Number of candidate matches scored per ranking",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Vector Cache Metrics
	VectorCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vector_cache_hits_total",
			Help: "Total number of vector cache hits",
		},
		[]string{"kind"},
	)

	VectorCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vector_cache_misses_total",
			Help: "Total number of vector cache misses",
		},
		[]string{"kind"},
	)

	VectorCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vector_cache_entries",
			Help: "Current number of cached vectors",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of enqueue events published",
		},
		[]string{"transport"}, // transport: "nats", "gochannel"
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Total number of enqueue events handled",
		},
		[]string{"result"}, // result: "ok", "invalid", "error"
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
		func() float64 { return time.Since(startTime).Seconds() },
	)
)

var startTime = time.Now()

// RecordAppInfo publishes the running version.
func RecordAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

// RecordEmbeddingJob records one processed job.
func RecordEmbeddingJob(kind, outcome string, duration time.Duration) {
	EmbeddingJobsProcessed.WithLabelValues(kind, outcome).Inc()
	if duration > 0 {
		EmbeddingJobDuration.WithLabelValues(kind).Observe(duration.Seconds())
	}
}

// RecordEmbeddingBatch records a batch run and the number of jobs fetched.
func RecordEmbeddingBatch(fetched int, err error) {
	switch {
	case err != nil:
		EmbeddingBatches.WithLabelValues("error").Inc()
	case fetched == 0:
		EmbeddingBatches.WithLabelValues("empty").Inc()
	default:
		EmbeddingBatches.WithLabelValues("ok").Inc()
		EmbeddingBatchSize.Observe(float64(fetched))
	}
}

// UpdateQueueDepth sets the per-status queue gauges.
func UpdateQueueDepth(pending, processing, completed, failed int) {
	EmbeddingQueueDepth.WithLabelValues("pending").Set(float64(pending))
	EmbeddingQueueDepth.WithLabelValues("processing").Set(float64(processing))
	EmbeddingQueueDepth.WithLabelValues("completed").Set(float64(completed))
	EmbeddingQueueDepth.WithLabelValues("failed").Set(float64(failed))
}

// RecordStaleRecovery records jobs moved out of processing by recovery.
func RecordStaleRecovery(reset, failed int) {
	EmbeddingStaleRecovered.WithLabelValues("pending").Add(float64(reset))
	EmbeddingStaleRecovered.WithLabelValues("failed").Add(float64(failed))
}

// RecordRanking records a ranking request.
func RecordRanking(result string, duration time.Duration, scored int) {
	RankingRequests.WithLabelValues(result).Inc()
	RankingDuration.Observe(duration.Seconds())
	if result == "ok" {
		RankingCandidatesScored.Observe(float64(scored))
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordVectorCache records a cache lookup.
func RecordVectorCache(kind string, hit bool) {
	if hit {
		VectorCacheHits.WithLabelValues(kind).Inc()
	} else {
		VectorCacheMisses.WithLabelValues(kind).Inc()
	}
}

// StateToFloat maps a breaker state name to the gauge value.
func StateToFloat(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}
