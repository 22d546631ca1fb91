// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/matchpoint/internal/models"
	"github.com/tomtom215/matchpoint/internal/vector"
)

func vectorTable(kind models.EntityKind) (string, error) {
	switch kind {
	case models.EntityUser:
		return "user_vectors", nil
	case models.EntityMatch:
		return "match_vectors", nil
	default:
		return "", fmt.Errorf("%w: %q", models.ErrUnknownEntityKind, kind)
	}
}

// UpsertVector replaces the stored vector for an entity.
func (db *DB) UpsertVector(ctx context.Context, kind models.EntityKind, entityID string, v vector.Vector) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	table, err := vectorTable(kind)
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode vector for %s %s: %w", kind, entityID, err)
	}

	query := `
		INSERT INTO ` + table + ` (entity_id, vector, dimension, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (entity_id) DO UPDATE SET
			vector = EXCLUDED.vector,
			dimension = EXCLUDED.dimension,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := db.conn.ExecContext(ctx, query, entityID, string(data), len(v), db.now()); err != nil {
		return fmt.Errorf("failed to upsert vector for %s %s: %w", kind, entityID, err)
	}
	return nil
}

// GetVector returns the stored vector for an entity, or ErrNotFound.
func (db *DB) GetVector(ctx context.Context, kind models.EntityKind, entityID string) (vector.Vector, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	table, err := vectorTable(kind)
	if err != nil {
		return nil, err
	}
	var data string
	err = db.conn.QueryRowContext(ctx,
		`SELECT vector FROM `+table+` WHERE entity_id = ?`, entityID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s vector %s: %w", kind, entityID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vector for %s %s: %w", kind, entityID, err)
	}
	return decodeVector(data)
}

// GetVectors returns the stored vectors for the given ids. Ids without a
// vector are absent from the result.
func (db *DB) GetVectors(ctx context.Context, kind models.EntityKind, ids []string) (map[string]vector.Vector, error) {
	out := make(map[string]vector.Vector, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	table, err := vectorTable(kind)
	if err != nil {
		return nil, err
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")

	rows, err := db.conn.QueryContext(ctx,
		`SELECT entity_id, vector FROM `+table+` WHERE entity_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s vectors: %w", kind, err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan vector: %w", err)
		}
		v, err := decodeVector(data)
		if err != nil {
			return nil, fmt.Errorf("%s vector %s: %w", kind, id, err)
		}
		out[id] = v
	}
	return out, rows.Err()
}

func decodeVector(data string) (vector.Vector, error) {
	var v vector.Vector
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, fmt.Errorf("malformed vector: %w", err)
	}
	return v, nil
}
