// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package vectorstore

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/matchpoint/internal/metrics"
	"github.com/tomtom215/matchpoint/internal/models"
	"github.com/tomtom215/matchpoint/internal/vector"
)

// BreakerSettings configures a BreakerStore.
type BreakerSettings struct {
	Name string

	// ConsecutiveFailures opens the circuit.
	ConsecutiveFailures uint32

	// Timeout is how long the circuit stays open before half-open.
	Timeout time.Duration

	// MaxRequests is the number of trial requests allowed half-open.
	MaxRequests uint32

	// Interval resets the closed-state counts. Zero never resets.
	Interval time.Duration
}

// BreakerStore guards a Store with a circuit breaker. Missing vectors and
// caller cancellation are not counted as failures. While open, calls fail
// fast with gobreaker.ErrOpenState.
type BreakerStore struct {
	next   Store
	cb     *gobreaker.CircuitBreaker[any]
	name   string
	logger zerolog.Logger
}

// NewBreakerStore wraps next.
func NewBreakerStore(next Store, s BreakerSettings, logger zerolog.Logger) *BreakerStore {
	if s.Name == "" {
		s.Name = "vector-store"
	}
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}
	if s.MaxRequests == 0 {
		s.MaxRequests = 1
	}

	b := &BreakerStore{
		next:   next,
		name:   s.Name,
		logger: logger.With().Str("component", "vector-breaker").Logger(),
	}

	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(s.Name).Set(0)

	b.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= s.ConsecutiveFailures
			if trip {
				b.logger.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("Opening circuit")
			}
			return trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.logger.Info().Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(metrics.StateToFloat(to.String()))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrNotFound) ||
				errors.Is(err, context.Canceled) ||
				errors.Is(err, models.ErrUnknownEntityKind)
		},
	})
	return b
}

// State returns the breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerStore) execute(fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	switch {
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
	case err != nil && !errors.Is(err, ErrNotFound):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(b.cb.Counts().ConsecutiveFailures))
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	}
	return result, err
}

// Get implements Store.
func (b *BreakerStore) Get(ctx context.Context, kind models.EntityKind, id string) (vector.Vector, error) {
	res, err := b.execute(func() (any, error) {
		return b.next.Get(ctx, kind, id)
	})
	if err != nil {
		return nil, err
	}
	v, _ := res.(vector.Vector)
	return v, nil
}

// GetMany implements Store.
func (b *BreakerStore) GetMany(ctx context.Context, kind models.EntityKind, ids []string) (map[string]vector.Vector, error) {
	res, err := b.execute(func() (any, error) {
		return b.next.GetMany(ctx, kind, ids)
	})
	if err != nil {
		return nil, err
	}
	m, _ := res.(map[string]vector.Vector)
	return m, nil
}

// Put implements Store.
func (b *BreakerStore) Put(ctx context.Context, kind models.EntityKind, id string, v vector.Vector) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.next.Put(ctx, kind, id, v)
	})
	return err
}
