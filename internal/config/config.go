// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/matchpoint/internal/similarity"
	"github.com/tomtom215/matchpoint/internal/vector"
)

// Config holds all application configuration.
//
// Config is immutable after Load and safe for concurrent reads.
type Config struct {
	Database   DatabaseConfig   `koanf:"database"`
	Vectors    VectorsConfig    `koanf:"vectors"`
	Queue      QueueConfig      `koanf:"queue"`
	Similarity SimilarityConfig `koanf:"similarity"`
	Encoder    EncoderConfig    `koanf:"encoder"`
	Ranker     RankerConfig     `koanf:"ranker"`
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	NATS       NATSConfig       `koanf:"nats"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file. ":memory:" opens an in-memory database.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = DuckDB default
}

// Vector backend names.
const (
	BackendDuckDB = "duckdb"
	BackendBadger = "badger"
)

// VectorsConfig selects and tunes the vector store.
//
// Environment Variables:
//   - VECTOR_BACKEND: duckdb or badger (default: duckdb)
//   - BADGER_PATH: Badger data directory
//   - VECTOR_CACHE_SIZE: LRU entries, 0 disables the cache (default: 10000)
//   - VECTOR_BREAKER_ENABLED: wrap writes and reads in a circuit breaker (default: true)
type VectorsConfig struct {
	Backend        string `koanf:"backend"`
	BadgerPath     string `koanf:"badger_path"`
	BadgerInMemory bool   `koanf:"badger_in_memory"`

	CacheSize int           `koanf:"cache_size"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`

	BreakerEnabled     bool          `koanf:"breaker_enabled"`
	BreakerFailures    uint32        `koanf:"breaker_failures"`     // consecutive failures before opening
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`      // open state duration
	BreakerMaxRequests uint32        `koanf:"breaker_max_requests"` // probes allowed while half-open
	BreakerInterval    time.Duration `koanf:"breaker_interval"`     // closed-state counter reset
}

// QueueConfig holds embedding queue worker settings.
type QueueConfig struct {
	BatchSize   int `koanf:"batch_size"`
	Concurrency int `koanf:"concurrency"`
	MaxAttempts int `koanf:"max_attempts"`

	// AutoProcess runs the worker on Interval from the supervisor tree.
	AutoProcess bool          `koanf:"auto_process"`
	Interval    time.Duration `koanf:"interval"`

	// JobsPerSecond throttles job starts. 0 = unlimited.
	JobsPerSecond float64       `koanf:"jobs_per_second"`
	JobTimeout    time.Duration `koanf:"job_timeout"`

	// StaleRecovery moves rows stuck in processing longer than StaleAfter
	// back to pending, or to failed when attempts are exhausted.
	StaleRecovery bool          `koanf:"stale_recovery"`
	StaleAfter    time.Duration `koanf:"stale_after"`
	StaleInterval time.Duration `koanf:"stale_interval"`
}

// SimilarityConfig holds block weights and tier thresholds.
type SimilarityConfig struct {
	SportWeight        float64 `koanf:"sport_weight"`
	AffiliationWeight  float64 `koanf:"affiliation_weight"`
	ProficiencyWeight  float64 `koanf:"proficiency_weight"`
	EnhancedWeight     float64 `koanf:"enhanced_weight"`
	ResidualWeight     float64 `koanf:"residual_weight"`
	NeutralScore       float64 `koanf:"neutral_score"`
	PerfectThreshold   float64 `koanf:"perfect_threshold"`
	ExcellentThreshold float64 `koanf:"excellent_threshold"`
	GoodThreshold      float64 `koanf:"good_threshold"`
}

// EncoderConfig holds vector encoder settings.
type EncoderConfig struct {
	// Timezone buckets match start times into days and slots (IANA name).
	Timezone   string  `koanf:"timezone"`
	SportDecay float64 `koanf:"sport_decay"`
}

// RankerConfig holds recommendation defaults.
type RankerConfig struct {
	DefaultLimit         int     `koanf:"default_limit"`
	MaxLimit             int     `koanf:"max_limit"`
	DefaultMinSimilarity float64 `koanf:"default_min_similarity"`

	// LazyEncode encodes a missing user vector inline instead of failing
	// with VECTOR_NOT_READY.
	LazyEncode      bool `koanf:"lazy_encode"`
	RefreshPriority int  `koanf:"refresh_priority"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// SecurityConfig holds CORS and rate limit settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// NATSConfig holds enqueue event transport settings. When disabled, enqueue
// events travel over an in-process Go channel.
type NATSConfig struct {
	Enabled        bool   `koanf:"enabled"`
	URL            string `koanf:"url"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	StoreDir       string `koanf:"store_dir"`

	// Topic carries enqueue requests.
	Topic       string `koanf:"topic"`
	PoisonTopic string `koanf:"poison_topic"`

	QueueGroup       string        `koanf:"queue_group"`
	DurableName      string        `koanf:"durable_name"`
	SubscribersCount int           `koanf:"subscribers_count"`
	AckWaitTimeout   time.Duration `koanf:"ack_wait_timeout"`

	RouterRetryCount           int           `koanf:"router_retry_count"`
	RouterRetryInitialInterval time.Duration `koanf:"router_retry_initial_interval"`
	RouterCloseTimeout         time.Duration `koanf:"router_close_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	Caller bool `koanf:"caller"`
}

// SimilarityEngineConfig builds the similarity engine configuration from
// the configured weights and thresholds.
func (c *Config) SimilarityEngineConfig() *similarity.Config {
	sc := similarity.DefaultConfig()
	weights := map[string]float64{
		similarity.BlockSport:       c.Similarity.SportWeight,
		similarity.BlockAffiliation: c.Similarity.AffiliationWeight,
		similarity.BlockProficiency: c.Similarity.ProficiencyWeight,
		similarity.BlockEnhanced:    c.Similarity.EnhancedWeight,
		similarity.BlockResidual:    c.Similarity.ResidualWeight,
	}
	for i := range sc.Blocks {
		sc.Blocks[i].Weight = weights[sc.Blocks[i].Name]
	}
	sc.NeutralScore = c.Similarity.NeutralScore
	sc.Thresholds = similarity.Thresholds{
		Perfect:   c.Similarity.PerfectThreshold,
		Excellent: c.Similarity.ExcellentThreshold,
		Good:      c.Similarity.GoodThreshold,
	}
	return sc
}

// EncoderConfig builds the vector encoder configuration.
func (c *Config) EncoderConfig() (*vector.Config, error) {
	vc := vector.DefaultConfig()
	if c.Encoder.Timezone != "" {
		loc, err := time.LoadLocation(c.Encoder.Timezone)
		if err != nil {
			return nil, fmt.Errorf("encoder.timezone %q: %w", c.Encoder.Timezone, err)
		}
		vc.Location = loc
	}
	if c.Encoder.SportDecay > 0 {
		vc.SportDecay = c.Encoder.SportDecay
	}
	return vc, nil
}

// Addr returns the HTTP listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
