// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package models

import (
	"time"

	"github.com/goccy/go-json"
)

// Profile is a stored user profile. Data is the profile document as
// received; the encoder reads it through vector.Record.
type Profile struct {
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// MatchRecord is a stored match. The indexed columns drive candidate
// selection; Data holds the full match document.
type MatchRecord struct {
	ID        string          `json:"id"`
	HostID    string          `json:"host_id" validate:"required,max=128"`
	Title     string          `json:"title" validate:"max=256"`
	Status    string          `json:"status" validate:"required,oneof=upcoming active completed cancelled"`
	StartTime time.Time       `json:"start_time" validate:"required"`
	Data      json.RawMessage `json:"data,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Joinable reports whether a user could still join the match at now.
func (m *MatchRecord) Joinable(now time.Time) bool {
	if m.Status != MatchStatusUpcoming && m.Status != MatchStatusActive {
		return false
	}
	return !m.StartTime.Before(now)
}

// ParticipantRequest adds a user to a match.
type ParticipantRequest struct {
	UserID string `json:"user_id" validate:"required,max=128"`
}
