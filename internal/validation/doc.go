// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

/*
Package validation validates request structs with go-playground/validator.

A single validator instance is shared process-wide; it caches struct
metadata and is safe for concurrent use. Error field names are taken from
json tags so messages match the request body the client sent.

Besides the built-in tags, entity_kind accepts every entity type the queue
understands, including legacy aliases:

	type EnqueueRequest struct {
	    EntityID   string `json:"entity_id" validate:"required,max=128"`
	    EntityType string `json:"entity_type" validate:"required,entity_kind"`
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
	    apiErr := verr.ToAPIError()
	    // respond 400 with apiErr.Code and apiErr.Message
	}

Failures used by the event processor are plain errors as well, since
*RequestValidationError implements error.
*/
package validation
