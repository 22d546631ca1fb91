// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/matchpoint/internal/database"
	"github.com/tomtom215/matchpoint/internal/logging"
	"github.com/tomtom215/matchpoint/internal/models"
)

// RecordWriteResult reports a record write and the refreshes it queued.
type RecordWriteResult struct {
	ID string `json:"id"`

	// JobIDs are the queue jobs covering the write. A profile write also
	// covers the matches the user hosts.
	JobIDs []string `json:"job_ids"`

	HostedMatches int `json:"hosted_matches,omitempty"`

	// EnqueueErrors lists refreshes that could not be queued. The record
	// itself was stored.
	EnqueueErrors []string `json:"enqueue_errors,omitempty"`
}

// PutProfile stores a user profile document and queues its vector refresh
// along with the user's hosted upcoming matches.
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id := chi.URLParam(r, "id")
	if !validID(id) {
		rw.BadRequest("invalid profile id")
		return
	}

	doc, err := readRawJSON(w, r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if !bytes.HasPrefix(bytes.TrimSpace(doc), []byte("{")) {
		rw.BadRequest("profile must be a JSON object")
		return
	}

	ctx := r.Context()
	if err := h.store.UpsertProfile(ctx, id, doc); err != nil {
		rw.DatabaseError(err)
		return
	}

	res := RecordWriteResult{ID: id, JobIDs: []string{}}
	h.enqueueInto(ctx, &res, models.EntityUser, id)

	hosted, err := h.store.HostedMatchIDs(ctx, id)
	if err != nil {
		res.EnqueueErrors = append(res.EnqueueErrors, "hosted matches: "+err.Error())
	}
	for _, matchID := range hosted {
		h.enqueueInto(ctx, &res, models.EntityMatch, matchID)
	}
	res.HostedMatches = len(hosted)

	rw.Success(res)
}

// PutMatch stores a match and queues its vector refresh.
func (h *Handler) PutMatch(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id := chi.URLParam(r, "id")
	if !validID(id) {
		rw.BadRequest("invalid match id")
		return
	}

	var m models.MatchRecord
	if err := decodeJSON(w, r, &m); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if apiErr := validateRequest(&m); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}
	m.ID = id

	ctx := r.Context()
	if err := h.store.UpsertMatch(ctx, &m); err != nil {
		rw.DatabaseError(err)
		return
	}

	res := RecordWriteResult{ID: id, JobIDs: []string{}}
	h.enqueueInto(ctx, &res, models.EntityMatch, id)
	rw.Success(res)
}

// AddParticipant records that a user joined a match. The match drops out
// of that user's candidates.
func (h *Handler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	matchID := chi.URLParam(r, "id")
	if !validID(matchID) {
		rw.BadRequest("invalid match id")
		return
	}

	var req models.ParticipantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	if _, err := h.store.GetMatch(r.Context(), matchID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("match not found")
			return
		}
		rw.DatabaseError(err)
		return
	}
	if err := h.store.AddParticipant(r.Context(), matchID, req.UserID); err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Created(map[string]string{"match_id": matchID, "user_id": req.UserID})
}

// enqueueInto queues a refresh and records the outcome in res.
func (h *Handler) enqueueInto(ctx context.Context, res *RecordWriteResult, kind models.EntityKind, id string) {
	job, _, err := h.store.Enqueue(ctx, database.EnqueueParams{EntityID: id, Kind: kind})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("entity_type", string(kind)).Str("entity_id", sanitizeLogValue(id)).Msg("Failed to enqueue refresh")
		res.EnqueueErrors = append(res.EnqueueErrors, string(kind)+" "+id+": "+err.Error())
		return
	}
	res.JobIDs = append(res.JobIDs, job.ID)
}
