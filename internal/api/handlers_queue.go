// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/matchpoint/internal/database"
	"github.com/tomtom215/matchpoint/internal/models"
	"github.com/tomtom215/matchpoint/internal/queue"
)

// EnqueueResult is the response to an enqueue request.
type EnqueueResult struct {
	Job *models.EmbeddingJob `json:"job"`

	// Created is false when a pending job for the entity already existed
	// and was updated instead.
	Created bool `json:"created"`
}

// ProcessRequest is the optional body of a process request.
type ProcessRequest struct {
	BatchSize int  `json:"batch_size" validate:"gte=0,lte=1000"`
	DryRun    bool `json:"dry_run"`
}

// TriggerRequest asks for an immediate refresh of one entity.
type TriggerRequest struct {
	EntityID   string `json:"entity_id" validate:"required,max=128"`
	EntityType string `json:"entity_type" validate:"required,entity_kind"`
}

// QueueStatus is the queue status response.
type QueueStatus struct {
	models.QueueStats
	Processing bool `json:"batch_running"`
}

// Enqueue adds or updates an embedding job.
func (h *Handler) Enqueue(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.EnqueueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}
	kind, err := models.ParseEntityKind(req.EntityType)
	if err != nil {
		rw.ValidationError(err.Error(), nil)
		return
	}

	job, created, err := h.store.Enqueue(r.Context(), database.EnqueueParams{
		EntityID:    req.EntityID,
		Kind:        kind,
		Priority:    req.Priority,
		MaxAttempts: req.MaxAttempts,
	})
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	res := EnqueueResult{Job: job, Created: created}
	if created {
		rw.Created(res)
		return
	}
	rw.Success(res)
}

// ProcessQueue runs one batch. It answers 409 while another batch runs.
func (h *Handler) ProcessQueue(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req ProcessRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		rw.BadRequest(err.Error())
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	res, err := h.worker.TryProcessBatch(r.Context(), queue.Options{BatchSize: req.BatchSize, DryRun: req.DryRun})
	switch {
	case errors.Is(err, queue.ErrAlreadyProcessing):
		rw.Conflict(ErrCodeAlreadyProcessing, "a batch is already being processed")
	case err != nil && res == nil:
		rw.DatabaseError(err)
	case err != nil:
		// Cancelled mid-batch: report what completed.
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "batch interrupted", res)
	default:
		rw.Success(res)
	}
}

// QueueStatus returns job counts per status.
func (h *Handler) QueueStatus(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	stats, err := h.store.QueueStats(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(QueueStatus{QueueStats: *stats, Processing: h.worker.Running()})
}

// ListJobs lists jobs newest first, filtered by status and entity.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, err := queryInt(r, "limit", 50)
	if err != nil || limit < 1 || limit > 500 {
		rw.BadRequest("limit must be between 1 and 500")
		return
	}
	status := models.JobStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		rw.BadRequest("unknown status")
		return
	}

	jobs, err := h.store.ListJobs(r.Context(), database.JobFilter{
		Status:   status,
		EntityID: r.URL.Query().Get("entity_id"),
		Limit:    limit,
	})
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if jobs == nil {
		jobs = []*models.EmbeddingJob{}
	}
	rw.Success(jobs)
}

// GetJob returns one job.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id := chi.URLParam(r, "jobID")
	if !validID(id) {
		rw.BadRequest("invalid job id")
		return
	}
	job, err := h.store.GetJob(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("job not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(job)
}

// Trigger enqueues an entity at trigger priority and processes it now.
func (h *Handler) Trigger(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req TriggerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}
	kind, err := models.ParseEntityKind(req.EntityType)
	if err != nil {
		rw.ValidationError(err.Error(), nil)
		return
	}

	res, err := h.worker.TriggerUpdate(r.Context(), kind, req.EntityID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(res)
}
