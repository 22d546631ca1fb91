// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/matchpoint/internal/database"
	"github.com/tomtom215/matchpoint/internal/models"
	"github.com/tomtom215/matchpoint/internal/vector"
)

// ErrNotFound is returned when an entity has no stored vector.
var ErrNotFound = errors.New("vector not found")

// Store persists encoded vectors keyed by entity kind and id. Put is
// last-write-wins. Vectors returned by Get and GetMany must not be
// modified by the caller.
type Store interface {
	Get(ctx context.Context, kind models.EntityKind, id string) (vector.Vector, error)

	// GetMany returns the vectors that exist; missing ids are absent from
	// the map.
	GetMany(ctx context.Context, kind models.EntityKind, ids []string) (map[string]vector.Vector, error)

	Put(ctx context.Context, kind models.EntityKind, id string, v vector.Vector) error
}

// VectorDB is the subset of the DuckDB store used for vectors.
type VectorDB interface {
	UpsertVector(ctx context.Context, kind models.EntityKind, entityID string, v vector.Vector) error
	GetVector(ctx context.Context, kind models.EntityKind, entityID string) (vector.Vector, error)
	GetVectors(ctx context.Context, kind models.EntityKind, ids []string) (map[string]vector.Vector, error)
}

// DuckDBStore keeps vectors in the user_vectors and match_vectors tables.
type DuckDBStore struct {
	db VectorDB
}

// NewDuckDBStore wraps the database vector tables.
func NewDuckDBStore(db VectorDB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

// Get implements Store.
func (s *DuckDBStore) Get(ctx context.Context, kind models.EntityKind, id string) (vector.Vector, error) {
	v, err := s.db.GetVector(ctx, kind, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return v, err
}

// GetMany implements Store.
func (s *DuckDBStore) GetMany(ctx context.Context, kind models.EntityKind, ids []string) (map[string]vector.Vector, error) {
	return s.db.GetVectors(ctx, kind, ids)
}

// Put implements Store.
func (s *DuckDBStore) Put(ctx context.Context, kind models.EntityKind, id string, v vector.Vector) error {
	return s.db.UpsertVector(ctx, kind, id, v)
}
