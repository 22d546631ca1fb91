// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

/*
Package config loads Matchpoint configuration with koanf.

# Sources

Values are layered, later layers winning:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: CONFIG_PATH, else config.yaml, config.yml,
    /etc/matchpoint/config.yaml
 3. Environment variables, through an explicit name map

Unknown environment variables are ignored.

# Sections

  - database: DuckDB path and resources (DUCKDB_PATH)
  - vectors: vector backend, LRU cache and circuit breaker (VECTOR_BACKEND)
  - queue: embedding worker batch size, concurrency, ticker, stale recovery
  - similarity: block weights, neutral score and tier thresholds
  - encoder: time zone for match schedules
  - ranker: limits, default threshold, lazy encoding
  - server, security: HTTP listener, CORS and rate limit
  - nats: enqueue event transport (in-process when disabled)
  - logging: level and format

# Example

	queue:
	  batch_size: 25
	  concurrency: 4
	  interval: 15s
	similarity:
	  sport_weight: 0.4
	  affiliation_weight: 0.2

SimilarityEngineConfig and EncoderConfig convert the loaded values into the
engine and encoder configurations.
*/
package config
