// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

// Package app opens the stores and builds the pipeline components from
// configuration. The server and the operator CLI share it.
package app

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/matchpoint/internal/config"
	"github.com/tomtom215/matchpoint/internal/database"
	"github.com/tomtom215/matchpoint/internal/queue"
	"github.com/tomtom215/matchpoint/internal/ranker"
	"github.com/tomtom215/matchpoint/internal/similarity"
	"github.com/tomtom215/matchpoint/internal/vector"
	"github.com/tomtom215/matchpoint/internal/vectorstore"
)

// Components are the wired pipeline parts.
type Components struct {
	DB      *database.DB
	Vectors vectorstore.Store
	Encoder *vector.Encoder
	Engine  *similarity.Engine
	Worker  *queue.Worker
	Ranker  *ranker.Ranker

	closeVectors func() error
}

// Build opens the database and vector store and wires the worker and
// ranker. Close releases what Build opened.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Build(cfg *config.Config, logger zerolog.Logger) (*Components, error) {
	encCfg, err := cfg.EncoderConfig()
	if err != nil {
		return nil, err
	}
	encoder, err := vector.NewEncoder(encCfg)
	if err != nil {
		return nil, fmt.Errorf("vector encoder: %w", err)
	}
	engine, err := similarity.NewEngine(cfg.SimilarityEngineConfig())
	if err != nil {
		return nil, fmt.Errorf("similarity engine: %w", err)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, err
	}
	db.SetDefaultMaxAttempts(cfg.Queue.MaxAttempts)

	vectors, closeVectors, err := vectorstore.New(&cfg.Vectors, db, logger.With().Str("component", "vectorstore").Logger())
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	worker := queue.NewWorker(db, db, vectors, encoder, WorkerConfig(&cfg.Queue), logger)
	rk := ranker.New(db, vectors, engine, db, worker, RankerConfig(&cfg.Ranker), logger)

	return &Components{
		DB:           db,
		Vectors:      vectors,
		Encoder:      encoder,
		Engine:       engine,
		Worker:       worker,
		Ranker:       rk,
		closeVectors: closeVectors,
	}, nil
}

// Close closes the vector store, then the database.
func (c *Components) Close() error {
	var errs []error
	if err := c.closeVectors(); err != nil {
		errs = append(errs, fmt.Errorf("close vector store: %w", err))
	}
	if err := c.DB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}

// WorkerConfig maps queue settings to the worker.
func WorkerConfig(q *config.QueueConfig) queue.Config {
	wc := queue.DefaultConfig()
	wc.BatchSize = q.BatchSize
	wc.Concurrency = q.Concurrency
	wc.JobsPerSecond = q.JobsPerSecond
	wc.JobTimeout = q.JobTimeout
	return wc
}

// RankerConfig maps ranker settings, keeping defaults for unset values.
func RankerConfig(r *config.RankerConfig) ranker.Config {
	rc := ranker.DefaultConfig()
	if r.DefaultLimit > 0 {
		rc.DefaultLimit = r.DefaultLimit
	}
	if r.MaxLimit > 0 {
		rc.MaxLimit = r.MaxLimit
	}
	if r.DefaultMinSimilarity > 0 {
		rc.DefaultMinSimilarity = r.DefaultMinSimilarity
	}
	if r.RefreshPriority > 0 {
		rc.RefreshPriority = r.RefreshPriority
	}
	rc.LazyEncode = r.LazyEncode
	return rc
}
