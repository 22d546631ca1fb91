// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

/*
database_schema.go - Database Schema

Tables:
  - profiles: user profile documents (JSON text)
  - matches: match documents with the columns used for candidate selection
  - match_participants: users who joined a match
  - user_vectors, match_vectors: encoded vectors, one row per entity
  - embedding_queue: vector refresh jobs

Documents and vectors are stored as JSON text so the schema needs no
extension. embedding_queue has no uniqueness on (entity_id, entity_type):
completed and failed rows are history and a new job is inserted when no
active one exists.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := append(tableQueries(), indexQueries()...)
	for _, q := range queries {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", q, err)
		}
	}
	return nil
}

func tableQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS matches (
			id TEXT PRIMARY KEY,
			host_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			start_time TIMESTAMP NOT NULL,
			data TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS match_participants (
			match_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			joined_at TIMESTAMP NOT NULL,
			PRIMARY KEY (match_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS user_vectors (
			entity_id TEXT PRIMARY KEY,
			vector TEXT NOT NULL,
			dimension INTEGER NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS match_vectors (
			entity_id TEXT PRIMARY KEY,
			vector TEXT NOT NULL,
			dimension INTEGER NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS embedding_queue (
			id TEXT PRIMARY KEY,
			entity_id TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			attempts INTEGER NOT NULL DEFAULT 0,
			max_attempts INTEGER NOT NULL DEFAULT 3,
			priority INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
	}
}

func indexQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_matches_host ON matches(host_id)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_status_start ON matches(status, start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_participants_user ON match_participants(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_queue_status_priority ON embedding_queue(status, priority, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_queue_entity ON embedding_queue(entity_id, entity_type)`,
	}
}
