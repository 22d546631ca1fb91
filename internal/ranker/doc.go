// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

/*
Package ranker ranks joinable matches for a user.

Rank loads the user vector, lists candidate matches (not hosted by the user,
upcoming or active, not yet joined), scores each stored match vector with
the similarity engine and returns a page ordered by score descending, start
time ascending, then match id.

A user without a vector yields ErrVectorNotReady after a high-priority
refresh is enqueued. With LazyEncode set the vector is encoded inline
instead. Matches without vectors are counted in the summary as pending and
left out of the results.
*/
package ranker
