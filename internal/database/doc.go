// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

/*
Package database provides the DuckDB store for profiles, matches, the
embedding queue and vectors.

# Queue semantics

Jobs move pending -> processing -> completed, or back to pending for a
retry, or to failed. MarkProcessing is a compare-and-swap on status and
attempts, so concurrent workers never both claim a job:

	job, err := db.MarkProcessing(ctx, id)
	if errors.Is(err, database.ErrJobNotClaimable) {
	    // another worker has it, or attempts are exhausted
	}

GetPendingJobs never returns a job whose attempts reached max_attempts,
and failed jobs are never re-fetched. Rows are not deleted.

# Timestamps

All timestamps are written from Go in UTC rather than by the database
clock, so tests can control them.

# Thread safety

DB is safe for concurrent use. Enqueue serializes per entity within the
process.
*/
package database
