// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownEntityKind is returned when a queue entry or request names an
// entity kind that has no encoder.
var ErrUnknownEntityKind = errors.New("unknown entity kind")

// EntityKind identifies what an embedding job refreshes.
type EntityKind string

const (
	// EntityUser refreshes a user preference vector.
	EntityUser EntityKind = "user"

	// EntityMatch refreshes a match characteristic vector.
	EntityMatch EntityKind = "match"
)

// legacyKinds maps kind names written by older producers.
var legacyKinds = map[string]EntityKind{
	"user_v3":  EntityUser,
	"match_v3": EntityMatch,
}

// ParseEntityKind resolves a raw kind string, accepting legacy aliases.
func ParseEntityKind(s string) (EntityKind, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	switch EntityKind(k) {
	case EntityUser, EntityMatch:
		return EntityKind(k), nil
	}
	if kind, ok := legacyKinds[k]; ok {
		return kind, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEntityKind, s)
}

// String returns the kind name.
func (k EntityKind) String() string {
	return string(k)
}

// StoredNames returns every entity_type value that resolves to k.
func (k EntityKind) StoredNames() []string {
	names := []string{string(k)}
	for legacy, kind := range legacyKinds {
		if kind == k {
			names = append(names, legacy)
		}
	}
	return names
}

// JobStatus is the lifecycle state of an embedding job.
type JobStatus string

const (
	// JobPending jobs are eligible for the next batch.
	JobPending JobStatus = "pending"

	// JobProcessing jobs have been claimed by a worker.
	JobProcessing JobStatus = "processing"

	// JobCompleted jobs have a persisted vector.
	JobCompleted JobStatus = "completed"

	// JobFailed jobs exhausted their attempts or can never succeed.
	// Failed is terminal.
	JobFailed JobStatus = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s JobStatus) Valid() bool {
	switch s {
	case JobPending, JobProcessing, JobCompleted, JobFailed:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transitions are possible from s.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Queue defaults, matching the values upstream producers have always used.
const (
	DefaultMaxAttempts     = 3
	DefaultPriority        = 0
	ManualTriggerPriority  = 10
	DefaultBatchSize       = 10
	StaleProcessingMessage = "stale processing timeout"
)

// EmbeddingJob is one row of the embedding refresh queue.
type EmbeddingJob struct {
	// ID is the job identifier (UUID).
	ID string `json:"id"`

	// EntityID is the user or match the job refreshes.
	EntityID string `json:"entity_id"`

	// EntityType is the raw kind as stored. Use Kind() to resolve aliases.
	EntityType string `json:"entity_type"`

	Status      JobStatus `json:"status"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
	Priority    int       `json:"priority"`

	// Error holds the last failure message, empty once completed.
	Error string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Kind resolves the stored entity type.
func (j *EmbeddingJob) Kind() (EntityKind, error) {
	return ParseEntityKind(j.EntityType)
}

// EnqueueRequest asks for an entity vector to be refreshed.
type EnqueueRequest struct {
	EntityID    string `json:"entity_id" validate:"required,max=128"`
	EntityType  string `json:"entity_type" validate:"required,entity_kind"`
	Priority    int    `json:"priority" validate:"gte=0,lte=100"`
	MaxAttempts int    `json:"max_attempts" validate:"gte=0,lte=20"`
}

// QueueStats summarises the queue by status.
type QueueStats struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}

// Add counts n jobs in status s.
func (q *QueueStats) Add(s JobStatus, n int) {
	switch s {
	case JobPending:
		q.Pending += n
	case JobProcessing:
		q.Processing += n
	case JobCompleted:
		q.Completed += n
	case JobFailed:
		q.Failed += n
	}
	q.Total += n
}
