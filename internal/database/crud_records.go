// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/matchpoint/internal/models"
	"github.com/tomtom215/matchpoint/internal/vector"
)

// UpsertProfile inserts or replaces a user profile document.
func (db *DB) UpsertProfile(ctx context.Context, id string, data json.RawMessage) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	if !json.Valid(data) {
		return fmt.Errorf("profile %s: data is not valid JSON", id)
	}

	query := `
		INSERT INTO profiles (id, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := db.conn.ExecContext(ctx, query, id, string(data), db.now()); err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", id, err)
	}
	return nil
}

// GetProfile returns the stored profile, or ErrNotFound.
func (db *DB) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var (
		p    models.Profile
		data string
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, data, updated_at FROM profiles WHERE id = ?`, id,
	).Scan(&p.ID, &data, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", id, err)
	}
	p.Data = json.RawMessage(data)
	return &p, nil
}

// GetUserRecord returns the profile document as an encoder record.
func (db *DB) GetUserRecord(ctx context.Context, id string) (vector.Record, error) {
	p, err := db.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	rec, err := vector.ParseRecord(p.Data)
	if err != nil {
		return nil, fmt.Errorf("profile %s: malformed data: %w", id, err)
	}
	if _, ok := rec["id"]; !ok {
		rec["id"] = id
	}
	return rec, nil
}

// UpsertMatch inserts or replaces a match.
func (db *DB) UpsertMatch(ctx context.Context, m *models.MatchRecord) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	data := m.Data
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	if !json.Valid(data) {
		return fmt.Errorf("match %s: data is not valid JSON", m.ID)
	}

	query := `
		INSERT INTO matches (id, host_id, title, status, start_time, data, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			host_id = EXCLUDED.host_id,
			title = EXCLUDED.title,
			status = EXCLUDED.status,
			start_time = EXCLUDED.start_time,
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
	`
	_, err := db.conn.ExecContext(ctx, query,
		m.ID, m.HostID, m.Title, m.Status, m.StartTime.UTC(), string(data), db.now())
	if err != nil {
		return fmt.Errorf("failed to upsert match %s: %w", m.ID, err)
	}
	return nil
}

// GetMatch returns the stored match, or ErrNotFound.
func (db *DB) GetMatch(ctx context.Context, id string) (*models.MatchRecord, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var (
		m    models.MatchRecord
		data string
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, host_id, title, status, start_time, data, updated_at
		FROM matches WHERE id = ?`, id,
	).Scan(&m.ID, &m.HostID, &m.Title, &m.Status, &m.StartTime, &data, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}
	m.StartTime = m.StartTime.UTC()
	m.Data = json.RawMessage(data)
	return &m, nil
}

// GetMatchRecord returns the match document as an encoder record. The
// indexed columns and the host profile are merged in where the document
// does not carry them.
func (db *DB) GetMatchRecord(ctx context.Context, id string) (vector.Record, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var (
		hostID, title, status, data string
		start                       time.Time
		hostData                    sql.NullString
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT m.host_id, m.title, m.status, m.start_time, m.data, p.data
		FROM matches m
		LEFT JOIN profiles p ON p.id = m.host_id
		WHERE m.id = ?`, id,
	).Scan(&hostID, &title, &status, &start, &data, &hostData)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}

	rec, err := vector.ParseRecord([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("match %s: malformed data: %w", id, err)
	}
	setDefault(rec, "id", id)
	setDefault(rec, "host_id", hostID)
	setDefault(rec, "status", status)
	setDefault(rec, "start_time", start.UTC().Format(time.RFC3339))
	if title != "" {
		setDefault(rec, "title", title)
	}
	if hostData.Valid {
		if _, ok := rec.Nested("host"); !ok {
			host, err := vector.ParseRecord([]byte(hostData.String))
			if err != nil {
				return nil, fmt.Errorf("match %s: malformed host profile %s: %w", id, hostID, err)
			}
			rec["host"] = host
		}
	}
	return rec, nil
}

func setDefault(rec vector.Record, key, value string) {
	if _, ok := rec.Get(key); !ok {
		rec[key] = value
	}
}

// AddParticipant records that userID joined matchID. Joining twice is a
// no-op.
func (db *DB) AddParticipant(ctx context.Context, matchID, userID string) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	query := `
		INSERT INTO match_participants (match_id, user_id, joined_at)
		VALUES (?, ?, ?)
		ON CONFLICT (match_id, user_id) DO NOTHING
	`
	if _, err := db.conn.ExecContext(ctx, query, matchID, userID, db.now()); err != nil {
		return fmt.Errorf("failed to add participant %s to match %s: %w", userID, matchID, err)
	}
	return nil
}

// HostedMatchIDs returns the joinable matches hosted by hostID.
func (db *DB) HostedMatchIDs(ctx context.Context, hostID string) ([]string, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id FROM matches
		WHERE host_id = ? AND status IN ('upcoming', 'active') AND start_time >= ?
		ORDER BY start_time, id`, hostID, db.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list matches hosted by %s: %w", hostID, err)
	}
	defer closeWithLog(rows, "rows")

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan match id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CandidateFilter selects the matches a user may be recommended.
type CandidateFilter struct {
	UserID string

	// Now is the cutoff for start_time. Zero means the current time.
	Now time.Time

	// MatchIDs restricts the candidates when non-empty.
	MatchIDs []string
}

// ListCandidates returns joinable matches the user neither hosts nor has
// joined, ordered by start time.
func (db *DB) ListCandidates(ctx context.Context, f CandidateFilter) ([]models.Candidate, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	now := f.Now
	if now.IsZero() {
		now = db.now()
	}

	var sb strings.Builder
	sb.WriteString(`
		SELECT m.id, m.title, m.host_id, m.status, m.start_time
		FROM matches m
		WHERE m.host_id <> ?
		  AND m.status IN ('upcoming', 'active')
		  AND m.start_time >= ?
		  AND NOT EXISTS (
			SELECT 1 FROM match_participants p
			WHERE p.match_id = m.id AND p.user_id = ?
		  )`)
	args := []any{f.UserID, now.UTC(), f.UserID}

	if len(f.MatchIDs) > 0 {
		sb.WriteString(" AND m.id IN (")
		for i, id := range f.MatchIDs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("?")
			args = append(args, id)
		}
		sb.WriteString(")")
	}
	sb.WriteString(" ORDER BY m.start_time, m.id")

	rows, err := db.conn.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates for %s: %w", f.UserID, err)
	}
	defer closeWithLog(rows, "rows")

	var out []models.Candidate
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.MatchID, &c.Title, &c.HostID, &c.Status, &c.StartTime); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		c.StartTime = c.StartTime.UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}
