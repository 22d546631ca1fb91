// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package models

import "time"

// Match statuses a user can still join.
const (
	MatchStatusUpcoming = "upcoming"
	MatchStatusActive   = "active"
)

// Candidate is a match eligible for ranking against a user.
type Candidate struct {
	MatchID   string    `json:"match_id"`
	Title     string    `json:"title"`
	HostID    string    `json:"host_id"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"start_time"`
}

// BlockScore is the contribution of one vector block to a similarity score.
type BlockScore struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Score  float64 `json:"score"`

	// Neutral is set when one side of the block had no signal.
	Neutral bool `json:"neutral,omitempty"`

	// Skipped is set when neither side had signal and the block was left
	// out of the weighted mean.
	Skipped bool `json:"skipped,omitempty"`
}

// Recommendation is one ranked match.
type Recommendation struct {
	MatchID     string       `json:"match_id"`
	Title       string       `json:"title,omitempty"`
	StartTime   time.Time    `json:"start_time"`
	Score       float64      `json:"score"`
	Percentage  int          `json:"percentage"`
	Tier        string       `json:"tier"`
	Explanation string       `json:"explanation"`
	Breakdown   []BlockScore `json:"breakdown"`
}

// RecommendationSummary describes the candidate set behind a ranking.
type RecommendationSummary struct {
	TotalAnalyzed          int                `json:"total_analyzed"`
	TotalSimilarMatches    int                `json:"total_similar_matches"`
	PerfectMatches         int                `json:"perfect_matches_90_plus"`
	PendingVectors         int                `json:"pending_vectors"`
	MinSimilarityThreshold float64            `json:"min_similarity_threshold"`
	CalculationMethod      string             `json:"calculation_method"`
	WeightDistribution     map[string]float64 `json:"weight_distribution"`
}

// RecommendationResponse is the ranked page plus its summary.
type RecommendationResponse struct {
	UserID          string                `json:"user_id"`
	Recommendations []Recommendation      `json:"recommendations"`
	Count           int                   `json:"count"`
	Limit           int                   `json:"limit"`
	Offset          int                   `json:"offset"`
	Summary         RecommendationSummary `json:"summary"`
	GeneratedAt     time.Time             `json:"generated_at"`
}
