// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

// Package similarity scores a user vector against a match vector with a
// block-weighted cosine similarity.
//
// # Algorithm
//
// The vector is split into blocks (sport, affiliation, proficiency,
// enhanced, residual). Cosine similarity is computed inside each block and
// the block scores are combined with configured weights:
//
//	score = sum(w_b * cos_b) / sum(w_b)   over blocks with signal
//
// so a mismatch costs what the attribute is worth, not its share of
// dimensions. Blocks with no signal on one side score NeutralScore; blocks
// with no signal on either side are left out. The result is clamped to [0, 1]
// and mapped onto a tier:
//
//	>= 0.90  perfect
//	>= 0.75  excellent
//	>= 0.60  good
//	else     moderate
//
// # Usage
//
//	eng, err := similarity.NewEngine(similarity.DefaultConfig())
//	res, err := eng.Score(userVec, matchVec)
//	fmt.Println(res.Percentage(), res.Tier, similarity.Explain(res))
package similarity
