// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package vectorstore

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/matchpoint/internal/cache"
	"github.com/tomtom215/matchpoint/internal/metrics"
	"github.com/tomtom215/matchpoint/internal/models"
	"github.com/tomtom215/matchpoint/internal/vector"
)

// CachedStore is a read-through LRU cache in front of a Store. Put writes
// through and drops the cached entry, so the next read sees the new vector.
//
// Each written key carries a generation. A read fills the cache only when
// no Put to that key started or finished while the read was in flight, so a
// slow read cannot reinstate the vector a concurrent Put replaced.
type CachedStore struct {
	next  Store
	cache *cache.LRU[vector.Vector]

	mu   sync.Mutex
	gens map[string]uint64
}

// NewCachedStore wraps next with a cache of size entries.
func NewCachedStore(next Store, size int, ttl time.Duration) *CachedStore {
	return &CachedStore{
		next:  next,
		cache: cache.NewLRU[vector.Vector](size, ttl),
		gens:  make(map[string]uint64),
	}
}

func (c *CachedStore) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[key]
}

// fill caches v unless key was written after gen was read.
func (c *CachedStore) fill(key string, gen uint64, v vector.Vector) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[key] == gen {
		c.cache.Add(key, v)
	}
}

// invalidate drops key and fences out fills from reads already in flight.
func (c *CachedStore) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[key]++
	c.cache.Remove(key)
}

func cacheKey(kind models.EntityKind, id string) string {
	return string(kind) + ":" + id
}

// Get implements Store.
func (c *CachedStore) Get(ctx context.Context, kind models.EntityKind, id string) (vector.Vector, error) {
	key := cacheKey(kind, id)
	if v, ok := c.cache.Get(key); ok {
		metrics.RecordVectorCache(string(kind), true)
		return v, nil
	}
	metrics.RecordVectorCache(string(kind), false)

	gen := c.generation(key)
	v, err := c.next.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	c.fill(key, gen, v)
	return v, nil
}

// GetMany implements Store. Only cache misses reach the wrapped store.
func (c *CachedStore) GetMany(ctx context.Context, kind models.EntityKind, ids []string) (map[string]vector.Vector, error) {
	out := make(map[string]vector.Vector, len(ids))
	var missing []string
	for _, id := range ids {
		if v, ok := c.cache.Get(cacheKey(kind, id)); ok {
			out[id] = v
			metrics.RecordVectorCache(string(kind), true)
			continue
		}
		metrics.RecordVectorCache(string(kind), false)
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}

	gens := make(map[string]uint64, len(missing))
	c.mu.Lock()
	for _, id := range missing {
		gens[id] = c.gens[cacheKey(kind, id)]
	}
	c.mu.Unlock()

	fetched, err := c.next.GetMany(ctx, kind, missing)
	if err != nil {
		return nil, err
	}
	for id, v := range fetched {
		c.fill(cacheKey(kind, id), gens[id], v)
		out[id] = v
	}
	metrics.VectorCacheEntries.Set(float64(c.cache.Len()))
	return out, nil
}

// Put implements Store.
func (c *CachedStore) Put(ctx context.Context, kind models.EntityKind, id string, v vector.Vector) error {
	key := cacheKey(kind, id)
	c.invalidate(key)
	err := c.next.Put(ctx, kind, id, v)
	c.invalidate(key)
	return err
}

// Stats returns the cache counters.
func (c *CachedStore) Stats() cache.Stats {
	return c.cache.Stats()
}
