// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/tomtom215/matchpoint/internal/similarity"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Vectors.Backend != BackendDuckDB {
		t.Errorf("Vectors.Backend = %q, want duckdb", cfg.Vectors.Backend)
	}
	if cfg.Queue.BatchSize != 10 || cfg.Queue.MaxAttempts != 3 {
		t.Errorf("Queue = %+v", cfg.Queue)
	}
	if cfg.Queue.Interval != 30*time.Second {
		t.Errorf("Queue.Interval = %v, want 30s", cfg.Queue.Interval)
	}
	if cfg.Queue.StaleRecovery {
		t.Error("stale recovery should be disabled by default")
	}
	if cfg.Ranker.DefaultLimit != 10 || cfg.Ranker.MaxLimit != 100 || cfg.Ranker.DefaultMinSimilarity != 0.01 {
		t.Errorf("Ranker = %+v", cfg.Ranker)
	}
	if cfg.NATS.Enabled {
		t.Error("NATS should be disabled by default")
	}
	if cfg.NATS.Topic != "embeddings.enqueue" {
		t.Errorf("NATS.Topic = %q", cfg.NATS.Topic)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"DUCKDB_PATH", "database.path"},
		{"VECTOR_BACKEND", "vectors.backend"},
		{"QUEUE_BATCH_SIZE", "queue.batch_size"},
		{"SIMILARITY_SPORT_WEIGHT", "similarity.sport_weight"},
		{"RANKER_LAZY_ENCODE", "ranker.lazy_encode"},
		{"HTTP_PORT", "server.port"},
		{"NATS_EMBEDDED", "nats.embedded_server"},
		{"LOG_LEVEL", "logging.level"},
		{"HOME", ""},
		{"PATH", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadFile_Layers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
database:
  path: ":memory:"
queue:
  batch_size: 25
  concurrency: 4
similarity:
  sport_weight: 0.5
ranker:
  default_limit: 20
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("QUEUE_CONCURRENCY", "8")
	t.Setenv("QUEUE_INTERVAL", "5s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Database.Path != ":memory:" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Queue.BatchSize != 25 {
		t.Errorf("file value lost: BatchSize = %d", cfg.Queue.BatchSize)
	}
	if cfg.Queue.Concurrency != 8 {
		t.Errorf("env should override file: Concurrency = %d", cfg.Queue.Concurrency)
	}
	if cfg.Queue.Interval != 5*time.Second {
		t.Errorf("Queue.Interval = %v", cfg.Queue.Interval)
	}
	if cfg.Queue.MaxAttempts != 3 {
		t.Errorf("default lost: MaxAttempts = %d", cfg.Queue.MaxAttempts)
	}
	if cfg.Similarity.SportWeight != 0.5 || cfg.Similarity.AffiliationWeight != 0.25 {
		t.Errorf("Similarity = %+v", cfg.Similarity)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	t.Setenv("VECTOR_BACKEND", "redis")
	if _, err := LoadFile(""); err == nil || !strings.Contains(err.Error(), "VECTOR_BACKEND") {
		t.Errorf("LoadFile() error = %v, want VECTOR_BACKEND validation error", err)
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty db path", func(c *Config) { c.Database.Path = " " }, "DUCKDB_PATH"},
		{"badger without path", func(c *Config) {
			c.Vectors.Backend = BackendBadger
			c.Vectors.BadgerPath = ""
		}, "BADGER_PATH"},
		{"zero breaker failures", func(c *Config) { c.Vectors.BreakerFailures = 0 }, "VECTOR_BREAKER_FAILURES"},
		{"batch too large", func(c *Config) { c.Queue.BatchSize = 5000 }, "QUEUE_BATCH_SIZE"},
		{"zero concurrency", func(c *Config) { c.Queue.Concurrency = 0 }, "QUEUE_CONCURRENCY"},
		{"stale without interval", func(c *Config) {
			c.Queue.StaleRecovery = true
			c.Queue.StaleInterval = 0
		}, "QUEUE_STALE"},
		{"negative weight", func(c *Config) { c.Similarity.SportWeight = -1 }, "weight"},
		{"bad timezone", func(c *Config) { c.Encoder.Timezone = "Mars/Olympus" }, "encoder.timezone"},
		{"default above max", func(c *Config) { c.Ranker.DefaultLimit = 200 }, "RANKER_DEFAULT_LIMIT"},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"bad nats url", func(c *Config) {
			c.NATS.Enabled = true
			c.NATS.URL = "http://localhost"
		}, "NATS_URL"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "LOG_LEVEL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestSimilarityEngineConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Similarity.ResidualWeight = 0

	sc := cfg.SimilarityEngineConfig()
	if err := sc.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	for _, b := range sc.Blocks {
		if b.Name == similarity.BlockResidual && b.Weight != 0 {
			t.Errorf("residual weight = %v, want 0", b.Weight)
		}
		if b.Name == similarity.BlockSport && b.Weight != 0.35 {
			t.Errorf("sport weight = %v, want 0.35", b.Weight)
		}
	}
}

func TestEncoderConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Encoder.Timezone = "Asia/Kuala_Lumpur"

	vc, err := cfg.EncoderConfig()
	if err != nil {
		t.Fatalf("EncoderConfig() error = %v", err)
	}
	if vc.Location.String() != "Asia/Kuala_Lumpur" {
		t.Errorf("Location = %v", vc.Location)
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 9000}
	if s.Addr() != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q", s.Addr())
	}
}
