// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

// Package logging provides the zerolog-based structured logger used across
// Matchpoint.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json", Timestamp: true})
//
//	logging.Info().Str("entity_id", id).Msg("Vector stored")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Job retry scheduled")
//
// # Context
//
// Ctx attaches correlation_id and request_id from the context. The HTTP
// layer sets the request ID; the queue worker creates a correlation ID per
// batch so every line of one batch can be grouped.
//
// # Adapters
//
// NewSlogLogger feeds sutureslog, and NewWatermillAdapter feeds the
// Watermill router and subscribers. Both write through zerolog so the
// process has a single output stream.
//
// # Output
//
//	{"level":"info","component":"queue","processed":8,"failed":0,"time":"2026-10-14T09:00:00Z","message":"Batch complete"}
package logging
