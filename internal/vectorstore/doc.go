// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

/*
Package vectorstore persists user and match vectors.

Backends:
  - DuckDBStore: the user_vectors and match_vectors tables (default)
  - BadgerStore: BadgerDB keys "user:<id>" and "match:<id>"

Decorators, applied by New in this order:
  - BreakerStore: sony/gobreaker circuit breaker; opens after consecutive
    backend failures so the queue worker fails fast and retries later
  - CachedStore: LRU read cache; writes invalidate the entry

A missing vector is ErrNotFound from Get and an absent key from GetMany.
*/
package vectorstore
