// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package vectorstore

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/matchpoint/internal/config"
)

// New builds the configured backend with its breaker and cache layers.
// The returned close function releases the backend and must be called
// even when the DuckDB backend is used.
func New(cfg *config.VectorsConfig, db VectorDB, logger zerolog.Logger) (Store, func() error, error) {
	var (
		store   Store
		closeFn = func() error { return nil }
	)

	switch cfg.Backend {
	case config.BackendDuckDB, "":
		store = NewDuckDBStore(db)
	case config.BackendBadger:
		bdb, err := OpenBadger(cfg.BadgerPath, cfg.BadgerInMemory, logger)
		if err != nil {
			return nil, nil, err
		}
		store = NewBadgerStore(bdb)
		closeFn = bdb.Close
	default:
		return nil, nil, fmt.Errorf("unknown vector backend %q", cfg.Backend)
	}

	if cfg.BreakerEnabled {
		store = NewBreakerStore(store, BreakerSettings{
			Name:                "vector-store-" + backendName(cfg.Backend),
			ConsecutiveFailures: cfg.BreakerFailures,
			Timeout:             cfg.BreakerTimeout,
			MaxRequests:         cfg.BreakerMaxRequests,
			Interval:            cfg.BreakerInterval,
		}, logger)
	}
	if cfg.CacheSize > 0 {
		store = NewCachedStore(store, cfg.CacheSize, cfg.CacheTTL)
	}

	logger.Info().
		Str("backend", backendName(cfg.Backend)).
		Bool("breaker", cfg.BreakerEnabled).
		Int("cache_size", cfg.CacheSize).
		Msg("Vector store ready")
	return store, closeFn, nil
}

func backendName(b string) string {
	if b == "" {
		return config.BackendDuckDB
	}
	return b
}
