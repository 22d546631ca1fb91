// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/matchpoint/internal/ranker"
	"github.com/tomtom215/matchpoint/internal/similarity"
)

// Recommendations ranks matches for the user in the request body.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req ranker.Request
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	h.rank(rw, r, req)
}

// UserRecommendations is the query-string form of Recommendations.
func (h *Handler) UserRecommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := ranker.Request{UserID: chi.URLParam(r, "userID")}
	if !validID(req.UserID) {
		rw.BadRequest("invalid user id")
		return
	}
	var err error
	if req.Limit, err = queryInt(r, "limit", 0); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if req.Offset, err = queryInt(r, "offset", 0); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if req.MinSimilarity, err = queryFloat(r, "min_similarity", 0); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	h.rank(rw, r, req)
}

func (h *Handler) rank(rw *ResponseWriter, r *http.Request, req ranker.Request) {
	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	resp, err := h.ranker.Rank(r.Context(), req)
	switch {
	case errors.Is(err, ranker.ErrVectorNotReady):
		rw.ErrorWithDetails(http.StatusConflict, ErrCodeVectorNotReady,
			"user vector is not ready; a refresh has been queued",
			map[string]string{"user_id": req.UserID})
	case errors.Is(err, ranker.ErrUserNotFound):
		rw.Error(http.StatusNotFound, ErrCodeUserNotFound, "user not found")
	case errors.Is(err, ranker.ErrInvalidRequest):
		rw.ValidationError(err.Error(), nil)
	case errors.Is(err, similarity.ErrDimensionMismatch):
		rw.ErrorWithDetails(http.StatusUnprocessableEntity, ErrCodeDimensionMismatch,
			"stored user vector has the wrong dimension; re-enqueue the user",
			map[string]string{"user_id": req.UserID})
	case err != nil:
		rw.InternalError(err)
	default:
		rw.Success(resp)
	}
}
