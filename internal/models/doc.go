// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

/*
Package models defines the data structures shared across Matchpoint.

Key Components:

  - EmbeddingJob: one row of the embedding refresh queue
  - JobStatus: pending, processing, completed, failed (failed is terminal)
  - EntityKind: user or match, with legacy aliases resolved by ParseEntityKind
  - EnqueueRequest and QueueStats: queue producer and status payloads
  - Candidate, Recommendation, RecommendationResponse: ranker inputs and outputs

Models carry json tags for the HTTP API and validate tags where they are
decoded from requests.
*/
package models
