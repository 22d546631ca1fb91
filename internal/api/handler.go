// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package api

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/matchpoint/internal/database"
	"github.com/tomtom215/matchpoint/internal/models"
	"github.com/tomtom215/matchpoint/internal/queue"
	"github.com/tomtom215/matchpoint/internal/ranker"
)

// Store is the persistence the handlers need.
type Store interface {
	Ping(ctx context.Context) error
	UpsertProfile(ctx context.Context, id string, data json.RawMessage) error
	UpsertMatch(ctx context.Context, m *models.MatchRecord) error
	GetMatch(ctx context.Context, id string) (*models.MatchRecord, error)
	AddParticipant(ctx context.Context, matchID, userID string) error
	HostedMatchIDs(ctx context.Context, hostID string) ([]string, error)
	Enqueue(ctx context.Context, p database.EnqueueParams) (*models.EmbeddingJob, bool, error)
	GetJob(ctx context.Context, id string) (*models.EmbeddingJob, error)
	ListJobs(ctx context.Context, f database.JobFilter) ([]*models.EmbeddingJob, error)
	QueueStats(ctx context.Context) (*models.QueueStats, error)
}

// Worker processes the embedding queue.
type Worker interface {
	TryProcessBatch(ctx context.Context, opts queue.Options) (*queue.BatchResult, error)
	TriggerUpdate(ctx context.Context, kind models.EntityKind, entityID string) (*queue.JobResult, error)
	Running() bool
}

// Ranker ranks matches for a user.
type Ranker interface {
	Rank(ctx context.Context, req ranker.Request) (*models.RecommendationResponse, error)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	store     Store
	worker    Worker
	ranker    Ranker
	checks    map[string]ReadinessCheck
	version   string
	startTime time.Time
	now       func() time.Time
}

// NewHandler creates the handler set. checks are run by the readiness
// probe in addition to the database ping.
func NewHandler(store Store, worker Worker, rk Ranker, version string, checks map[string]ReadinessCheck) *Handler {
	if checks == nil {
		checks = map[string]ReadinessCheck{}
	}
	return &Handler{
		store:     store,
		worker:    worker,
		ranker:    rk,
		checks:    checks,
		version:   version,
		startTime: time.Now(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}
