// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package similarity

import (
	"errors"
	"fmt"
	"math"

	"github.com/tomtom215/matchpoint/internal/models"
	"github.com/tomtom215/matchpoint/internal/vector"
)

// ErrDimensionMismatch is returned when the two vectors differ in length or
// do not match the configured dimension.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Tier is a discrete compatibility label.
type Tier string

const (
	TierPerfect   Tier = "perfect"
	TierExcellent Tier = "excellent"
	TierGood      Tier = "good"
	TierModerate  Tier = "moderate"
)

// String returns the tier label.
func (t Tier) String() string {
	return string(t)
}

// Result is the outcome of scoring one user vector against one match vector.
type Result struct {
	// Score is the weighted cosine similarity in [0, 1].
	Score float64

	Tier Tier

	// Blocks holds per-block scores in configuration order.
	Blocks []models.BlockScore
}

// Percentage returns the score rounded to a whole percent.
func (r Result) Percentage() int {
	return int(math.Round(r.Score * 100))
}

// Engine computes weighted cosine similarity. It holds no mutable state and
// is safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine. A nil config uses DefaultConfig. Weights are
// normalized to sum to 1.
func NewEngine(cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid similarity config: %w", err)
	}
	c := cfg.Clone()
	c.Normalize()
	return &Engine{cfg: *c}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.cfg.Clone()
}

// Score compares a user vector with a match vector.
//
// Each block contributes its cosine similarity. A block where exactly one
// side is all zero contributes NeutralScore. A block where both sides are
// all zero carries no information and is left out of the weighted mean, so
// Score(v, v) is 1 for every non-zero v. When every block is left out the
// score is NeutralScore.
func (e *Engine) Score(user, match vector.Vector) (Result, error) {
	if len(user) != len(match) || len(user) != e.cfg.Dimension {
		return Result{}, fmt.Errorf("%w: user %d, match %d, want %d",
			ErrDimensionMismatch, len(user), len(match), e.cfg.Dimension)
	}

	blocks := make([]models.BlockScore, len(e.cfg.Blocks))
	var weighted, weightSum float64

	for i, b := range e.cfg.Blocks {
		bs := models.BlockScore{Name: b.Name, Weight: b.Weight}

		dot, nu, nm := blockTerms(user, match, b.Start, b.End)
		switch {
		case nu == 0 && nm == 0:
			bs.Skipped = true
		case nu == 0 || nm == 0:
			bs.Neutral = true
			bs.Score = e.cfg.NeutralScore
		default:
			bs.Score = clamp(dot / (math.Sqrt(nu) * math.Sqrt(nm)))
		}

		if !bs.Skipped {
			weighted += b.Weight * bs.Score
			weightSum += b.Weight
		}
		blocks[i] = bs
	}

	score := e.cfg.NeutralScore
	if weightSum > 0 {
		score = clamp(weighted / weightSum)
	}

	return Result{
		Score:  score,
		Tier:   e.Tier(score),
		Blocks: blocks,
	}, nil
}

// Tier maps a score onto its tier.
func (e *Engine) Tier(score float64) Tier {
	t := e.cfg.Thresholds
	switch {
	case score >= t.Perfect:
		return TierPerfect
	case score >= t.Excellent:
		return TierExcellent
	case score >= t.Good:
		return TierGood
	default:
		return TierModerate
	}
}

// Weights returns the normalized weight of every block by name.
func (e *Engine) Weights() map[string]float64 {
	out := make(map[string]float64, len(e.cfg.Blocks))
	for _, b := range e.cfg.Blocks {
		out[b.Name] = b.Weight
	}
	return out
}

// blockTerms returns the dot product and squared norms over [start, end).
func blockTerms(a, b vector.Vector, start, end int) (dot, na, nb float64) {
	for i := start; i < end; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	return dot, na, nb
}

func clamp(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
