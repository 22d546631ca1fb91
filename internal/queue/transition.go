// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package queue

import (
	"errors"

	"github.com/tomtom215/matchpoint/internal/models"
)

var (
	// ErrEncodingFailure marks a job whose source record was missing or
	// could not be encoded. Retried.
	ErrEncodingFailure = errors.New("encoding failure")

	// ErrPersistenceFailure marks a job whose vector could not be stored.
	// Retried.
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrAlreadyProcessing is returned by TryProcessBatch while another
	// batch is running.
	ErrAlreadyProcessing = errors.New("queue processing already in progress")
)

// Event is something that happened to a job.
type Event int

const (
	// EventClaim is a worker taking a pending job.
	EventClaim Event = iota

	// EventSuccess is the vector being encoded and persisted.
	EventSuccess

	// EventFailure is a retryable encoding or persistence failure.
	EventFailure

	// EventUnknownKind is a job whose entity kind has no encoder.
	EventUnknownKind
)

func (e Event) String() string {
	switch e {
	case EventClaim:
		return "claim"
	case EventSuccess:
		return "success"
	case EventFailure:
		return "failure"
	case EventUnknownKind:
		return "unknown_kind"
	default:
		return "unknown"
	}
}

// Decision is the state a job moves to after an event.
type Decision struct {
	// Allowed is false when the event is not valid in the job's state; To
	// then equals the current state.
	Allowed bool

	To       models.JobStatus
	Attempts int

	// Error is the message to store. Empty clears it.
	Error string
}

// Transition applies ev to job without side effects. cause is the failure
// for EventFailure and EventUnknownKind.
//
//	pending    --claim-->        processing (attempts+1, only if attempts < max)
//	processing --success-->      completed  (error cleared)
//	processing --failure-->      pending    (attempts < max)
//	processing --failure-->      failed     (attempts >= max)
//	pending|processing --unknown_kind--> failed
func Transition(job models.EmbeddingJob, ev Event, cause error) Decision {
	stay := Decision{To: job.Status, Attempts: job.Attempts, Error: job.Error}
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}

	switch ev {
	case EventClaim:
		if job.Status != models.JobPending || job.Attempts >= job.MaxAttempts {
			return stay
		}
		return Decision{Allowed: true, To: models.JobProcessing, Attempts: job.Attempts + 1, Error: job.Error}

	case EventSuccess:
		if job.Status != models.JobProcessing {
			return stay
		}
		return Decision{Allowed: true, To: models.JobCompleted, Attempts: job.Attempts}

	case EventFailure:
		if job.Status != models.JobProcessing {
			return stay
		}
		if job.Attempts < job.MaxAttempts {
			return Decision{Allowed: true, To: models.JobPending, Attempts: job.Attempts, Error: msg}
		}
		return Decision{Allowed: true, To: models.JobFailed, Attempts: job.Attempts, Error: msg}

	case EventUnknownKind:
		if job.Status.Terminal() || !job.Status.Valid() {
			return stay
		}
		return Decision{Allowed: true, To: models.JobFailed, Attempts: job.Attempts, Error: msg}
	}
	return stay
}
