// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package ranker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/matchpoint/internal/database"
	"github.com/tomtom215/matchpoint/internal/metrics"
	"github.com/tomtom215/matchpoint/internal/models"
	"github.com/tomtom215/matchpoint/internal/similarity"
	"github.com/tomtom215/matchpoint/internal/vector"
	"github.com/tomtom215/matchpoint/internal/vectorstore"
)

var (
	// ErrVectorNotReady is returned when the user has no vector yet. A
	// refresh has been requested by the time it is returned.
	ErrVectorNotReady = errors.New("user vector not ready")

	// ErrUserNotFound is returned when the user has no profile.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidRequest is returned for out-of-range request values.
	ErrInvalidRequest = errors.New("invalid ranking request")
)

// CalculationMethod names the scoring method in response summaries.
const CalculationMethod = "weighted_cosine_similarity"

// Records is the data the ranker reads besides vectors.
type Records interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	ListCandidates(ctx context.Context, f database.CandidateFilter) ([]models.Candidate, error)
}

// Enqueuer requests vector refreshes.
type Enqueuer interface {
	Enqueue(ctx context.Context, p database.EnqueueParams) (*models.EmbeddingJob, bool, error)
}

// Encoder encodes an entity from its stored record.
type Encoder interface {
	Encode(ctx context.Context, kind models.EntityKind, entityID string) (vector.Vector, error)
}

// Config tunes the ranker.
type Config struct {
	DefaultLimit         int
	MaxLimit             int
	DefaultMinSimilarity float64

	// LazyEncode encodes a missing user vector inline instead of failing
	// with ErrVectorNotReady.
	LazyEncode bool

	// RefreshPriority is the priority of the refresh enqueued for a
	// missing user vector.
	RefreshPriority int
}

// DefaultConfig returns the ranker defaults.
func DefaultConfig() Config {
	return Config{
		DefaultLimit:         10,
		MaxLimit:             100,
		DefaultMinSimilarity: 0.01,
		RefreshPriority:      models.ManualTriggerPriority,
	}
}

// Request asks for ranked matches for a user.
type Request struct {
	UserID string `json:"user_id" validate:"required,max=128"`

	// MatchIDs restricts the candidates when non-empty.
	MatchIDs []string `json:"match_ids,omitempty" validate:"max=500,dive,required,max=128"`

	// MinSimilarity drops matches scoring below it. Zero uses the default.
	MinSimilarity float64 `json:"min_similarity" validate:"gte=0,lte=1"`

	// Limit is the page size. Zero uses the default.
	Limit  int `json:"limit" validate:"gte=0"`
	Offset int `json:"offset" validate:"gte=0"`
}

// Ranker scores candidate matches against a user vector.
type Ranker struct {
	records  Records
	vectors  vectorstore.Store
	engine   *similarity.Engine
	enqueuer Enqueuer
	encoder  Encoder
	cfg      Config
	logger   zerolog.Logger
	now      func() time.Time
}

// New creates a ranker. encoder may be nil when LazyEncode is off.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(records Records, vectors vectorstore.Store, engine *similarity.Engine, enqueuer Enqueuer, encoder Encoder, cfg Config, logger zerolog.Logger) *Ranker {
	def := DefaultConfig()
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = def.DefaultLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = def.MaxLimit
	}
	if cfg.DefaultMinSimilarity <= 0 {
		cfg.DefaultMinSimilarity = def.DefaultMinSimilarity
	}
	if cfg.RefreshPriority <= 0 {
		cfg.RefreshPriority = def.RefreshPriority
	}
	return &Ranker{
		records:  records,
		vectors:  vectors,
		engine:   engine,
		enqueuer: enqueuer,
		encoder:  encoder,
		cfg:      cfg,
		logger:   logger.With().Str("component", "ranker").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type scored struct {
	candidate models.Candidate
	result    similarity.Result
}

// Rank returns the user's matches ordered by score, then start time, then
// match id.
func (r *Ranker) Rank(ctx context.Context, req Request) (resp *models.RecommendationResponse, err error) {
	start := time.Now()
	outcome := "ok"
	scoredCount := 0
	defer func() {
		switch {
		case errors.Is(err, ErrVectorNotReady):
			outcome = "vector_not_ready"
		case errors.Is(err, ErrUserNotFound):
			outcome = "user_not_found"
		case errors.Is(err, similarity.ErrDimensionMismatch):
			outcome = "dimension_mismatch"
		case err != nil:
			outcome = "error"
		}
		metrics.RecordRanking(outcome, time.Since(start), scoredCount)
	}()

	if err := r.normalize(&req); err != nil {
		return nil, err
	}

	userVec, err := r.userVector(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if dim := r.engine.Config().Dimension; len(userVec) != dim {
		return nil, fmt.Errorf("user %s vector has %d dimensions, want %d: %w",
			req.UserID, len(userVec), dim, similarity.ErrDimensionMismatch)
	}

	candidates, err := r.records.ListCandidates(ctx, database.CandidateFilter{
		UserID:   req.UserID,
		Now:      r.now(),
		MatchIDs: req.MatchIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.MatchID
	}
	matchVecs, err := r.vectors.GetMany(ctx, models.EntityMatch, ids)
	if err != nil {
		return nil, fmt.Errorf("load match vectors: %w", err)
	}

	summary := models.RecommendationSummary{
		MinSimilarityThreshold: req.MinSimilarity,
		CalculationMethod:      CalculationMethod,
		WeightDistribution:     r.engine.Weights(),
	}
	perfect := r.engine.Config().Thresholds.Perfect

	results := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		mv, ok := matchVecs[c.MatchID]
		if !ok {
			summary.PendingVectors++
			continue
		}
		res, err := r.engine.Score(userVec, mv)
		if err != nil {
			r.logger.Warn().Err(err).Str("match_id", c.MatchID).Msg("Skipping match with unusable vector")
			summary.PendingVectors++
			continue
		}
		summary.TotalAnalyzed++
		if res.Score < req.MinSimilarity {
			continue
		}
		summary.TotalSimilarMatches++
		if res.Score >= perfect {
			summary.PerfectMatches++
		}
		results = append(results, scored{candidate: c, result: res})
	}
	scoredCount = summary.TotalAnalyzed

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.result.Score != b.result.Score {
			return a.result.Score > b.result.Score
		}
		if !a.candidate.StartTime.Equal(b.candidate.StartTime) {
			return a.candidate.StartTime.Before(b.candidate.StartTime)
		}
		return a.candidate.MatchID < b.candidate.MatchID
	})

	page := paginate(results, req.Offset, req.Limit)
	recs := make([]models.Recommendation, len(page))
	for i, s := range page {
		recs[i] = models.Recommendation{
			MatchID:     s.candidate.MatchID,
			Title:       s.candidate.Title,
			StartTime:   s.candidate.StartTime,
			Score:       s.result.Score,
			Percentage:  s.result.Percentage(),
			Tier:        s.result.Tier.String(),
			Explanation: similarity.Explain(s.result),
			Breakdown:   s.result.Blocks,
		}
	}

	r.logger.Debug().
		Str("user_id", req.UserID).
		Int("candidates", len(candidates)).
		Int("similar", summary.TotalSimilarMatches).
		Int("pending_vectors", summary.PendingVectors).
		Msg("Ranked matches")

	return &models.RecommendationResponse{
		UserID:          req.UserID,
		Recommendations: recs,
		Count:           len(recs),
		Limit:           req.Limit,
		Offset:          req.Offset,
		Summary:         summary,
		GeneratedAt:     r.now(),
	}, nil
}

func (r *Ranker) normalize(req *Request) error {
	if req.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	}
	if req.Limit < 0 || req.Offset < 0 {
		return fmt.Errorf("%w: limit and offset must be non-negative", ErrInvalidRequest)
	}
	if req.MinSimilarity < 0 || req.MinSimilarity > 1 {
		return fmt.Errorf("%w: min_similarity must be within [0, 1]", ErrInvalidRequest)
	}
	if req.Limit == 0 {
		req.Limit = r.cfg.DefaultLimit
	}
	if req.Limit > r.cfg.MaxLimit {
		req.Limit = r.cfg.MaxLimit
	}
	if req.MinSimilarity == 0 {
		req.MinSimilarity = r.cfg.DefaultMinSimilarity
	}
	return nil
}

// userVector loads the user's vector. When it is missing, the user is
// checked for existence and either encoded inline or queued for refresh.
func (r *Ranker) userVector(ctx context.Context, userID string) (vector.Vector, error) {
	v, err := r.vectors.Get(ctx, models.EntityUser, userID)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, vectorstore.ErrNotFound) {
		return nil, fmt.Errorf("load user vector: %w", err)
	}

	if _, err := r.records.GetProfile(ctx, userID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", userID, ErrUserNotFound)
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}

	if r.cfg.LazyEncode && r.encoder != nil {
		v, err := r.encoder.Encode(ctx, models.EntityUser, userID)
		if err != nil {
			return nil, fmt.Errorf("encode user %s: %w", userID, err)
		}
		if err := r.vectors.Put(ctx, models.EntityUser, userID, v); err != nil {
			r.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to persist lazily encoded vector")
		}
		return v, nil
	}

	if r.enqueuer != nil {
		if _, _, err := r.enqueuer.Enqueue(ctx, database.EnqueueParams{
			EntityID: userID,
			Kind:     models.EntityUser,
			Priority: r.cfg.RefreshPriority,
		}); err != nil {
			r.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to enqueue user vector refresh")
		}
	}
	return nil, fmt.Errorf("%s: %w", userID, ErrVectorNotReady)
}

func paginate(items []scored, offset, limit int) []scored {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
