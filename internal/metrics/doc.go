// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

/*
Package metrics provides Prometheus metrics for the recommendation pipeline.

Collectors are registered with promauto on the default registry and exposed
at /metrics by the API server:

	curl http://localhost:8080/metrics

# Available Metrics

Embedding queue:
  - embedding_jobs_processed_total: jobs by kind and outcome (counter)
  - embedding_job_duration_seconds: per-job encode and persist time (histogram)
  - embedding_queue_jobs: jobs by status (gauge)
  - embedding_batches_total, embedding_batch_size: batch runs
  - embedding_stale_jobs_recovered_total: stale recovery by target status

Ranking:
  - ranking_requests_total: requests by result (counter)
  - ranking_duration_seconds: end-to-end ranking time (histogram)
  - ranking_candidates_scored: candidates scored per request (histogram)

HTTP:
  - api_requests_total, api_request_duration_seconds, api_active_requests
  - api_rate_limit_hits_total

Vector store:
  - vector_cache_hits_total, vector_cache_misses_total, vector_cache_entries
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total, circuit_breaker_consecutive_failures,
    circuit_breaker_state_transitions_total

Events:
  - events_published_total, events_consumed_total

# Example Alert

	- alert: EmbeddingBacklog
	  expr: embedding_queue_jobs{status="pending"} > 1000
	  for: 10m
*/
package metrics
