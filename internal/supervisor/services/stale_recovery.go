// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/matchpoint/internal/metrics"
)

// StaleResetter moves stale processing jobs out of processing. Satisfied
// by *database.DB.
type StaleResetter interface {
	ResetStaleJobs(ctx context.Context, cutoff time.Time) (reset, failed int, err error)
}

// StaleRecoveryService periodically recovers jobs whose worker died while
// they were in processing.
type StaleRecoveryService struct {
	jobs     StaleResetter
	after    time.Duration
	interval time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewStaleRecoveryService creates the service. Jobs untouched for longer
// than after are recovered every interval.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewStaleRecoveryService(jobs StaleResetter, after, interval time.Duration, logger zerolog.Logger) *StaleRecoveryService {
	if after <= 0 {
		after = 10 * time.Minute
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &StaleRecoveryService{
		jobs:     jobs,
		after:    after,
		interval: interval,
		logger:   logger.With().Str("service", "stale-recovery").Logger(),
		now:      time.Now,
	}
}

// Serve implements suture.Service.
func (s *StaleRecoveryService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.recover(ctx)
		}
	}
}

func (s *StaleRecoveryService) recover(ctx context.Context) {
	reset, failed, err := s.jobs.ResetStaleJobs(ctx, s.now().Add(-s.after))
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("Stale job recovery failed")
		}
		return
	}
	if reset+failed == 0 {
		return
	}
	metrics.RecordStaleRecovery(reset, failed)
	s.logger.Warn().Int("reset", reset).Int("failed", failed).Dur("stale_after", s.after).Msg("Recovered stale processing jobs")
}

// String implements fmt.Stringer.
func (s *StaleRecoveryService) String() string {
	return "stale-recovery"
}
