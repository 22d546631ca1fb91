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

	"github.com/google/uuid"

	"github.com/tomtom215/matchpoint/internal/models"
)

// ErrJobNotProcessing is returned when a completion, retry or failure is
// recorded for a job that is not in the processing state.
var ErrJobNotProcessing = errors.New("job not processing")

const jobColumns = `id, entity_id, entity_type, status, attempts, max_attempts, priority, error, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*models.EmbeddingJob, error) {
	var (
		j      models.EmbeddingJob
		status string
	)
	err := row.Scan(&j.ID, &j.EntityID, &j.EntityType, &status, &j.Attempts,
		&j.MaxAttempts, &j.Priority, &j.Error, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.Status = models.JobStatus(status)
	j.CreatedAt = j.CreatedAt.UTC()
	j.UpdatedAt = j.UpdatedAt.UTC()
	return &j, nil
}

// EnqueueParams describes a requested vector refresh.
type EnqueueParams struct {
	EntityID    string
	Kind        models.EntityKind
	Priority    int
	MaxAttempts int
}

// Enqueue schedules a vector refresh. When the entity already has a
// pending job, that job's priority and max_attempts are raised to the
// requested values where higher and created is false. Otherwise a new
// pending job is inserted, including while an earlier job is processing:
// that job may have read the record before the change.
func (db *DB) Enqueue(ctx context.Context, p EnqueueParams) (job *models.EmbeddingJob, created bool, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	if p.EntityID == "" {
		return nil, false, fmt.Errorf("enqueue: entity id is required")
	}
	if _, err := models.ParseEntityKind(string(p.Kind)); err != nil {
		return nil, false, err
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = db.maxAttempts
	}
	if p.Priority < 0 {
		p.Priority = models.DefaultPriority
	}

	unlock := db.lockEntity(string(p.Kind) + ":" + p.EntityID)
	defer unlock()

	names := p.Kind.StoredNames()
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	args := []any{p.EntityID}
	for _, n := range names {
		args = append(args, n)
	}

	var pendingID string
	err = db.conn.QueryRowContext(ctx, `
		SELECT id FROM embedding_queue
		WHERE entity_id = ? AND entity_type IN (`+placeholders+`)
		  AND status = 'pending'
		ORDER BY created_at, id
		LIMIT 1`, args...,
	).Scan(&pendingID)

	now := db.now()
	switch {
	case err == nil:
		job, err = scanJob(db.conn.QueryRowContext(ctx, `
			UPDATE embedding_queue SET
				priority = GREATEST(priority, ?),
				max_attempts = GREATEST(max_attempts, ?),
				updated_at = ?
			WHERE id = ?
			RETURNING `+jobColumns,
			p.Priority, p.MaxAttempts, now, pendingID))
		if err != nil {
			return nil, false, fmt.Errorf("failed to update job %s: %w", pendingID, err)
		}
		return job, false, nil

	case errors.Is(err, sql.ErrNoRows):
		job, err = scanJob(db.conn.QueryRowContext(ctx, `
			INSERT INTO embedding_queue
				(id, entity_id, entity_type, status, attempts, max_attempts, priority, error, created_at, updated_at)
			VALUES (?, ?, ?, 'pending', 0, ?, ?, '', ?, ?)
			RETURNING `+jobColumns,
			uuid.NewString(), p.EntityID, string(p.Kind), p.MaxAttempts, p.Priority, now, now))
		if err != nil {
			return nil, false, fmt.Errorf("failed to enqueue %s %s: %w", p.Kind, p.EntityID, err)
		}
		return job, true, nil

	default:
		return nil, false, fmt.Errorf("failed to look up pending job for %s %s: %w", p.Kind, p.EntityID, err)
	}
}

// GetJob returns a job by id, or ErrNotFound.
func (db *DB) GetJob(ctx context.Context, id string) (*models.EmbeddingJob, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	job, err := scanJob(db.conn.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM embedding_queue WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	return job, nil
}

// GetPendingJobs returns up to limit claimable jobs, highest priority
// first and oldest first within a priority.
func (db *DB) GetPendingJobs(ctx context.Context, limit int) ([]*models.EmbeddingJob, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = models.DefaultBatchSize
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+jobColumns+` FROM embedding_queue
		WHERE status = 'pending' AND attempts < max_attempts
		ORDER BY priority DESC, created_at ASC, id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending jobs: %w", err)
	}
	return collectJobs(rows)
}

// JobFilter narrows ListJobs.
type JobFilter struct {
	Status   models.JobStatus
	EntityID string
	Limit    int
}

// ListJobs returns jobs newest first.
func (db *DB) ListJobs(ctx context.Context, f JobFilter) ([]*models.EmbeddingJob, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.EntityID != "" {
		where = append(where, "entity_id = ?")
		args = append(args, f.EntityID)
	}
	query := `SELECT ` + jobColumns + ` FROM embedding_queue`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return collectJobs(rows)
}

func collectJobs(rows *sql.Rows) ([]*models.EmbeddingJob, error) {
	defer closeWithLog(rows, "rows")

	var jobs []*models.EmbeddingJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating jobs: %w", err)
	}
	return jobs, nil
}

// MarkProcessing claims a pending job and increments its attempts. The
// update only matches a pending job with attempts left, so of two
// concurrent claims exactly one succeeds; the other gets
// ErrJobNotClaimable.
func (db *DB) MarkProcessing(ctx context.Context, id string) (*models.EmbeddingJob, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	job, err := scanJob(db.conn.QueryRowContext(ctx, `
		UPDATE embedding_queue SET
			status = 'processing',
			attempts = attempts + 1,
			updated_at = ?
		WHERE id = ? AND status = 'pending' AND attempts < max_attempts
		RETURNING `+jobColumns, db.now(), id))
	if errors.Is(err, sql.ErrNoRows) || isConflict(err) {
		return nil, fmt.Errorf("job %s: %w", id, ErrJobNotClaimable)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim job %s: %w", id, err)
	}
	return job, nil
}

// MarkCompleted finishes a processing job and clears its error.
func (db *DB) MarkCompleted(ctx context.Context, id string) error {
	return db.finishJob(ctx, id, models.JobCompleted, "", "status = 'processing'")
}

// MarkPending returns a processing job to the queue for another attempt.
func (db *DB) MarkPending(ctx context.Context, id, errMsg string) error {
	return db.finishJob(ctx, id, models.JobPending, errMsg, "status = 'processing'")
}

// MarkFailed moves a job to the terminal failed state. Pending jobs may be
// failed directly when they can never succeed.
func (db *DB) MarkFailed(ctx context.Context, id, errMsg string) error {
	return db.finishJob(ctx, id, models.JobFailed, errMsg, "status IN ('processing', 'pending')")
}

func (db *DB) finishJob(ctx context.Context, id string, status models.JobStatus, errMsg, guard string) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `
		UPDATE embedding_queue SET status = ?, error = ?, updated_at = ?
		WHERE id = ? AND `+guard,
		string(status), errMsg, db.now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark job %s %s: %w", id, status, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark job %s %s: %w", id, status, err)
	}
	if n == 0 {
		return fmt.Errorf("job %s: %w", id, ErrJobNotProcessing)
	}
	return nil
}

// QueueStats counts jobs by status.
func (db *DB) QueueStats(ctx context.Context) (*models.QueueStats, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM embedding_queue GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to query queue stats: %w", err)
	}
	defer closeWithLog(rows, "rows")

	stats := &models.QueueStats{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan queue stats: %w", err)
		}
		stats.Add(models.JobStatus(status), n)
	}
	return stats, rows.Err()
}

// ResetStaleJobs recovers jobs left in processing since before cutoff.
// Jobs with attempts left return to pending; the rest fail with
// models.StaleProcessingMessage.
func (db *DB) ResetStaleJobs(ctx context.Context, cutoff time.Time) (reset, failed int, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		UPDATE embedding_queue SET
			status = CASE WHEN attempts < max_attempts THEN 'pending' ELSE 'failed' END,
			error = CASE WHEN attempts < max_attempts THEN error ELSE ? END,
			updated_at = ?
		WHERE status = 'processing' AND updated_at < ?
		RETURNING status`,
		models.StaleProcessingMessage, db.now(), cutoff.UTC())
	if err != nil {
		return 0, 0, fmt.Errorf("failed to reset stale jobs: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var status string
		if err := rows.Scan(&status); err != nil {
			return reset, failed, fmt.Errorf("failed to scan reset job: %w", err)
		}
		if models.JobStatus(status) == models.JobFailed {
			failed++
		} else {
			reset++
		}
	}
	return reset, failed, rows.Err()
}
