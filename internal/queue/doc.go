// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

/*
Package queue drains the embedding refresh queue.

A Worker fetches pending jobs in priority order, claims each one through
the store's compare-and-swap, loads the profile or match record, encodes
it and writes the vector. Every outcome is a state transition computed by
Transition:

	pending -> processing -> completed
	                      -> pending  (retryable failure, attempts left)
	                      -> failed   (attempts exhausted, or unknown kind)

Encoding and persistence errors never escape ProcessBatch; they are
recorded on the job and in the BatchResult.

# Concurrency

ProcessBatch runs jobs through an errgroup bounded by Concurrency, with an
optional golang.org/x/time/rate limiter on job starts. TryProcessBatch adds
a guard so periodic runs never overlap:

	res, err := worker.TryProcessBatch(ctx, queue.Options{})
	if errors.Is(err, queue.ErrAlreadyProcessing) {
	    // previous batch still running
	}
*/
package queue
