// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file locations searched in order.
// The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/matchpoint/config.yaml",
	"/etc/matchpoint/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults. File and environment values
// are layered on top.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:      "/data/matchpoint.duckdb",
			MaxMemory: "1GB",
		},
		Vectors: VectorsConfig{
			Backend:            BackendDuckDB,
			BadgerPath:         "/data/vectors",
			CacheSize:          10000,
			CacheTTL:           10 * time.Minute,
			BreakerEnabled:     true,
			BreakerFailures:    5,
			BreakerTimeout:     30 * time.Second,
			BreakerMaxRequests: 1,
			BreakerInterval:    time.Minute,
		},
		Queue: QueueConfig{
			BatchSize:     10,
			Concurrency:   1,
			MaxAttempts:   3,
			AutoProcess:   true,
			Interval:      30 * time.Second,
			JobsPerSecond: 0,
			JobTimeout:    30 * time.Second,
			StaleRecovery: false,
			StaleAfter:    10 * time.Minute,
			StaleInterval: 5 * time.Minute,
		},
		Similarity: SimilarityConfig{
			SportWeight:        0.35,
			AffiliationWeight:  0.25,
			ProficiencyWeight:  0.20,
			EnhancedWeight:     0.15,
			ResidualWeight:     0.05,
			NeutralScore:       0.5,
			PerfectThreshold:   0.90,
			ExcellentThreshold: 0.75,
			GoodThreshold:      0.60,
		},
		Encoder: EncoderConfig{
			Timezone:   "UTC",
			SportDecay: 0.01,
		},
		Ranker: RankerConfig{
			DefaultLimit:         10,
			MaxLimit:             100,
			DefaultMinSimilarity: 0.01,
			LazyEncode:           false,
			RefreshPriority:      10,
		},
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		NATS: NATSConfig{
			Enabled:                    false,
			URL:                        "nats://127.0.0.1:4222",
			EmbeddedServer:             false,
			StoreDir:                   "/data/nats/jetstream",
			Topic:                      "embeddings.enqueue",
			PoisonTopic:                "embeddings.poison",
			QueueGroup:                 "embedding-workers",
			DurableName:                "embedding-workers",
			SubscribersCount:           2,
			AckWaitTimeout:             30 * time.Second,
			RouterRetryCount:           3,
			RouterRetryInitialInterval: 100 * time.Millisecond,
			RouterCloseTimeout:         30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from defaults, the first config file found and
// the environment, in increasing priority, and validates the result.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file. An empty path skips the
// file layer.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// DUCKDB_PATH -> database.path, QUEUE_BATCH_SIZE -> queue.batch_size, ...
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns CONFIG_PATH if it exists, else the first default
// path that exists, else "".
func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			continue
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Vector store
	"vector_backend":              "vectors.backend",
	"badger_path":                 "vectors.badger_path",
	"badger_in_memory":            "vectors.badger_in_memory",
	"vector_cache_size":           "vectors.cache_size",
	"vector_cache_ttl":            "vectors.cache_ttl",
	"vector_breaker_enabled":      "vectors.breaker_enabled",
	"vector_breaker_failures":     "vectors.breaker_failures",
	"vector_breaker_timeout":      "vectors.breaker_timeout",
	"vector_breaker_max_requests": "vectors.breaker_max_requests",
	"vector_breaker_interval":     "vectors.breaker_interval",

	// Queue
	"queue_batch_size":      "queue.batch_size",
	"queue_concurrency":     "queue.concurrency",
	"queue_max_attempts":    "queue.max_attempts",
	"queue_auto_process":    "queue.auto_process",
	"queue_interval":        "queue.interval",
	"queue_jobs_per_second": "queue.jobs_per_second",
	"queue_job_timeout":     "queue.job_timeout",
	"queue_stale_recovery":  "queue.stale_recovery",
	"queue_stale_after":     "queue.stale_after",
	"queue_stale_interval":  "queue.stale_interval",

	// Similarity
	"similarity_sport_weight":        "similarity.sport_weight",
	"similarity_affiliation_weight":  "similarity.affiliation_weight",
	"similarity_proficiency_weight":  "similarity.proficiency_weight",
	"similarity_enhanced_weight":     "similarity.enhanced_weight",
	"similarity_residual_weight":     "similarity.residual_weight",
	"similarity_neutral_score":       "similarity.neutral_score",
	"similarity_perfect_threshold":   "similarity.perfect_threshold",
	"similarity_excellent_threshold": "similarity.excellent_threshold",
	"similarity_good_threshold":      "similarity.good_threshold",

	// Encoder
	"encoder_timezone":    "encoder.timezone",
	"encoder_sport_decay": "encoder.sport_decay",

	// Ranker
	"ranker_default_limit":          "ranker.default_limit",
	"ranker_max_limit":              "ranker.max_limit",
	"ranker_default_min_similarity": "ranker.default_min_similarity",
	"ranker_lazy_encode":            "ranker.lazy_encode",
	"ranker_refresh_priority":       "ranker.refresh_priority",

	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// NATS
	"nats_enabled":               "nats.enabled",
	"nats_url":                   "nats.url",
	"nats_embedded":              "nats.embedded_server",
	"nats_store_dir":             "nats.store_dir",
	"nats_topic":                 "nats.topic",
	"nats_poison_topic":          "nats.poison_topic",
	"nats_queue_group":           "nats.queue_group",
	"nats_durable_name":          "nats.durable_name",
	"nats_subscribers":           "nats.subscribers_count",
	"nats_ack_wait":              "nats.ack_wait_timeout",
	"nats_router_retry_count":    "nats.router_retry_count",
	"nats_router_retry_interval": "nats.router_retry_initial_interval",
	"nats_router_close_timeout":  "nats.router_close_timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
