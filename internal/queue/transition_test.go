// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package queue

import (
	"errors"
	"testing"

	"github.com/tomtom215/matchpoint/internal/models"
)

func job(status models.JobStatus, attempts, maxAttempts int) models.EmbeddingJob {
	return models.EmbeddingJob{
		ID:          "j1",
		EntityID:    "u1",
		EntityType:  "user",
		Status:      status,
		Attempts:    attempts,
		MaxAttempts: maxAttempts,
	}
}

func TestTransition(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name         string
		job          models.EmbeddingJob
		ev           Event
		cause        error
		wantAllowed  bool
		wantTo       models.JobStatus
		wantAttempts int
		wantError    string
	}{
		{"claim pending", job(models.JobPending, 0, 3), EventClaim, nil, true, models.JobProcessing, 1, ""},
		{"claim exhausted", job(models.JobPending, 3, 3), EventClaim, nil, false, models.JobPending, 3, ""},
		{"claim processing", job(models.JobProcessing, 1, 3), EventClaim, nil, false, models.JobProcessing, 1, ""},
		{"claim failed", job(models.JobFailed, 3, 3), EventClaim, nil, false, models.JobFailed, 3, ""},
		{"success", job(models.JobProcessing, 1, 3), EventSuccess, nil, true, models.JobCompleted, 1, ""},
		{"success not processing", job(models.JobPending, 0, 3), EventSuccess, nil, false, models.JobPending, 0, ""},
		{"failure retries", job(models.JobProcessing, 1, 3), EventFailure, boom, true, models.JobPending, 1, "boom"},
		{"failure at max-1 retries", job(models.JobProcessing, 2, 3), EventFailure, boom, true, models.JobPending, 2, "boom"},
		{"failure at max fails", job(models.JobProcessing, 3, 3), EventFailure, boom, true, models.JobFailed, 3, "boom"},
		{"failure completed", job(models.JobCompleted, 1, 3), EventFailure, boom, false, models.JobCompleted, 1, ""},
		{"unknown kind processing", job(models.JobProcessing, 1, 3), EventUnknownKind, boom, true, models.JobFailed, 1, "boom"},
		{"unknown kind pending", job(models.JobPending, 0, 3), EventUnknownKind, boom, true, models.JobFailed, 0, "boom"},
		{"unknown kind failed", job(models.JobFailed, 1, 3), EventUnknownKind, boom, false, models.JobFailed, 1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Transition(tt.job, tt.ev, tt.cause)
			if d.Allowed != tt.wantAllowed || d.To != tt.wantTo || d.Attempts != tt.wantAttempts || d.Error != tt.wantError {
				t.Errorf("Transition(%s, %s) = %+v, want allowed=%v to=%s attempts=%d error=%q",
					tt.job.Status, tt.ev, d, tt.wantAllowed, tt.wantTo, tt.wantAttempts, tt.wantError)
			}
		})
	}
}

func TestTransition_SuccessClearsError(t *testing.T) {
	j := job(models.JobProcessing, 2, 3)
	j.Error = "previous failure"
	if d := Transition(j, EventSuccess, nil); d.Error != "" {
		t.Errorf("completed job keeps error %q", d.Error)
	}
}

// Attempts never decrease and failed stays failed across any event sequence.
func TestTransition_Monotonic(t *testing.T) {
	events := []Event{EventClaim, EventFailure, EventClaim, EventSuccess, EventClaim, EventFailure, EventUnknownKind}
	for maxAttempts := 1; maxAttempts <= 4; maxAttempts++ {
		for start := range events {
			j := job(models.JobPending, 0, maxAttempts)
			for i := 0; i < 3*len(events); i++ {
				ev := events[(start+i)%len(events)]
				d := Transition(j, ev, errors.New("x"))
				if d.Attempts < j.Attempts {
					t.Fatalf("attempts decreased %d -> %d on %s", j.Attempts, d.Attempts, ev)
				}
				if j.Status == models.JobFailed && d.To != models.JobFailed {
					t.Fatalf("failed job left terminal state on %s", ev)
				}
				if d.To == models.JobPending && d.Attempts > maxAttempts {
					t.Fatalf("pending job with attempts %d > max %d", d.Attempts, maxAttempts)
				}
				j.Status, j.Attempts, j.Error = d.To, d.Attempts, d.Error
			}
		}
	}
}

func TestEventString(t *testing.T) {
	if EventUnknownKind.String() != "unknown_kind" || Event(99).String() != "unknown" {
		t.Error("unexpected event names")
	}
}
