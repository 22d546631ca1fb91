// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/matchpoint/internal/queue"
)

// BatchRunner runs guarded queue batches. Satisfied by *queue.Worker.
type BatchRunner interface {
	TryProcessBatch(ctx context.Context, opts queue.Options) (*queue.BatchResult, error)
}

// QueueProcessorConfig configures the auto-processor.
type QueueProcessorConfig struct {
	// Interval between batches. Default: 30s
	Interval time.Duration

	// RunOnStart processes a batch before the first tick.
	RunOnStart bool

	Options queue.Options
}

// QueueProcessorService drains the embedding queue on an interval.
type QueueProcessorService struct {
	runner BatchRunner
	config QueueProcessorConfig
	logger zerolog.Logger
}

// NewQueueProcessorService creates the auto-processor.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewQueueProcessorService(runner BatchRunner, cfg QueueProcessorConfig, logger zerolog.Logger) *QueueProcessorService {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	return &QueueProcessorService{
		runner: runner,
		config: cfg,
		logger: logger.With().Str("service", "queue-processor").Logger(),
	}
}

// Serve implements suture.Service.
func (s *QueueProcessorService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.config.Interval).Msg("Queue processor starting")

	if s.config.RunOnStart {
		s.runOnce(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Queue processor stopping")
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *QueueProcessorService) runOnce(ctx context.Context) {
	res, err := s.runner.TryProcessBatch(ctx, s.config.Options)
	switch {
	case errors.Is(err, queue.ErrAlreadyProcessing):
		s.logger.Debug().Msg("Batch still running, tick skipped")
	case err != nil && ctx.Err() != nil:
		// shutting down
	case err != nil:
		s.logger.Warn().Err(err).Msg("Queue batch failed")
	case len(res.Jobs) > 0:
		s.logger.Info().
			Int("processed", res.Processed).
			Int("retried", res.Retried).
			Int("failed", res.Failed).
			Int("skipped", res.Skipped).
			Int64("duration_ms", res.DurationMs).
			Msg("Queue batch complete")
	}
}

// String implements fmt.Stringer.
func (s *QueueProcessorService) String() string {
	return "queue-processor"
}
