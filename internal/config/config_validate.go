// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/matchpoint/internal/logging"
)

// Validate checks every section.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateDatabase,
		c.validateVectors,
		c.validateQueue,
		c.validateSimilarity,
		c.validateEncoder,
		c.validateRanker,
		c.validateServer,
		c.validateSecurity,
		c.validateNATS,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("DUCKDB_PATH must not be empty")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateVectors() error {
	v := c.Vectors
	switch v.Backend {
	case BackendDuckDB:
	case BackendBadger:
		if !v.BadgerInMemory && strings.TrimSpace(v.BadgerPath) == "" {
			return fmt.Errorf("BADGER_PATH is required when VECTOR_BACKEND=badger")
		}
	default:
		return fmt.Errorf("VECTOR_BACKEND must be %q or %q, got %q", BackendDuckDB, BackendBadger, v.Backend)
	}
	if v.CacheSize < 0 {
		return fmt.Errorf("VECTOR_CACHE_SIZE must be >= 0, got %d", v.CacheSize)
	}
	if v.CacheSize > 0 && v.CacheTTL <= 0 {
		return fmt.Errorf("VECTOR_CACHE_TTL must be positive when the cache is enabled")
	}
	if v.BreakerEnabled {
		if v.BreakerFailures == 0 {
			return fmt.Errorf("VECTOR_BREAKER_FAILURES must be at least 1")
		}
		if v.BreakerTimeout <= 0 {
			return fmt.Errorf("VECTOR_BREAKER_TIMEOUT must be positive")
		}
	}
	return nil
}

func (c *Config) validateQueue() error {
	q := c.Queue
	if q.BatchSize < 1 || q.BatchSize > 1000 {
		return fmt.Errorf("QUEUE_BATCH_SIZE must be between 1 and 1000, got %d", q.BatchSize)
	}
	if q.Concurrency < 1 || q.Concurrency > 64 {
		return fmt.Errorf("QUEUE_CONCURRENCY must be between 1 and 64, got %d", q.Concurrency)
	}
	if q.MaxAttempts < 1 {
		return fmt.Errorf("QUEUE_MAX_ATTEMPTS must be at least 1, got %d", q.MaxAttempts)
	}
	if q.AutoProcess && q.Interval <= 0 {
		return fmt.Errorf("QUEUE_INTERVAL must be positive when QUEUE_AUTO_PROCESS=true")
	}
	if q.JobsPerSecond < 0 {
		return fmt.Errorf("QUEUE_JOBS_PER_SECOND must be >= 0, got %f", q.JobsPerSecond)
	}
	if q.StaleRecovery && (q.StaleAfter <= 0 || q.StaleInterval <= 0) {
		return fmt.Errorf("QUEUE_STALE_AFTER and QUEUE_STALE_INTERVAL must be positive when QUEUE_STALE_RECOVERY=true")
	}
	return nil
}

func (c *Config) validateSimilarity() error {
	return c.SimilarityEngineConfig().Validate()
}

func (c *Config) validateEncoder() error {
	vc, err := c.EncoderConfig()
	if err != nil {
		return err
	}
	return vc.Validate()
}

func (c *Config) validateRanker() error {
	r := c.Ranker
	if r.MaxLimit < 1 {
		return fmt.Errorf("RANKER_MAX_LIMIT must be at least 1, got %d", r.MaxLimit)
	}
	if r.DefaultLimit < 1 || r.DefaultLimit > r.MaxLimit {
		return fmt.Errorf("RANKER_DEFAULT_LIMIT must be between 1 and %d, got %d", r.MaxLimit, r.DefaultLimit)
	}
	if r.DefaultMinSimilarity < 0 || r.DefaultMinSimilarity > 1 {
		return fmt.Errorf("RANKER_DEFAULT_MIN_SIMILARITY must be in [0,1], got %f", r.DefaultMinSimilarity)
	}
	if r.RefreshPriority < 0 {
		return fmt.Errorf("RANKER_REFRESH_PRIORITY must be >= 0, got %d", r.RefreshPriority)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateNATS() error {
	n := c.NATS
	if strings.TrimSpace(n.Topic) == "" {
		return fmt.Errorf("NATS_TOPIC must not be empty")
	}
	if !n.Enabled {
		return nil
	}
	u, err := url.Parse(n.URL)
	if err != nil || u.Scheme != "nats" || u.Host == "" {
		return fmt.Errorf("NATS_URL must be a nats:// URL, got %q", n.URL)
	}
	if n.EmbeddedServer && strings.TrimSpace(n.StoreDir) == "" {
		return fmt.Errorf("NATS_STORE_DIR is required when NATS_EMBEDDED=true")
	}
	if n.SubscribersCount < 1 {
		return fmt.Errorf("NATS_SUBSCRIBERS must be at least 1, got %d", n.SubscribersCount)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}
