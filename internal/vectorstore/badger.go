// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/matchpoint/internal/models"
	"github.com/tomtom215/matchpoint/internal/vector"
)

// badgerValue is the stored form of a vector.
type badgerValue struct {
	Vector    vector.Vector `json:"v"`
	UpdatedAt time.Time     `json:"t"`
}

// BadgerStore keeps vectors in BadgerDB under "user:<id>" and "match:<id>".
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens a BadgerDB at path, or an in-memory one.
func OpenBadger(path string, inMemory bool, logger zerolog.Logger) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(&badgerLogger{logger: logger.With().Str("component", "badger").Logger()})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger %q: %w", path, err)
	}
	return db, nil
}

// NewBadgerStore wraps an open BadgerDB.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func badgerKey(kind models.EntityKind, id string) []byte {
	return []byte(string(kind) + ":" + id)
}

func checkKind(kind models.EntityKind) error {
	if kind != models.EntityUser && kind != models.EntityMatch {
		return fmt.Errorf("%w: %q", models.ErrUnknownEntityKind, kind)
	}
	return nil
}

// Get implements Store.
func (s *BadgerStore) Get(ctx context.Context, kind models.EntityKind, id string) (vector.Vector, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	var val badgerValue
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(kind, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("get vector: %w", err)
		}
		return item.Value(func(b []byte) error {
			return json.Unmarshal(b, &val)
		})
	})
	if err != nil {
		return nil, err
	}
	return val.Vector, nil
}

// GetMany implements Store.
func (s *BadgerStore) GetMany(ctx context.Context, kind models.EntityKind, ids []string) (map[string]vector.Vector, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	out := make(map[string]vector.Vector, len(ids))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := txn.Get(badgerKey(kind, id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("get vector %s: %w", id, err)
			}
			var val badgerValue
			if err := item.Value(func(b []byte) error { return json.Unmarshal(b, &val) }); err != nil {
				return fmt.Errorf("decode vector %s: %w", id, err)
			}
			out[id] = val.Vector
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Put implements Store.
func (s *BadgerStore) Put(ctx context.Context, kind models.EntityKind, id string, v vector.Vector) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	data, err := json.Marshal(badgerValue{Vector: v, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal vector: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(kind, id), data)
	})
}

// badgerLogger routes Badger's logging into zerolog. Badger's info output
// is chatty, so it is logged at debug.
type badgerLogger struct {
	logger zerolog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Trace().Msgf(format, args...)
}
