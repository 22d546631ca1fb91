// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

// Package middleware provides net/http middleware shared by the API router:
// request ids with a request-scoped logger, Prometheus request metrics and
// access logging. All three use the func(http.Handler) http.Handler shape
// chi expects.
package middleware
