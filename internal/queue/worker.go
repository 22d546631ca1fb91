// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/tomtom215/matchpoint/internal/database"
	"github.com/tomtom215/matchpoint/internal/logging"
	"github.com/tomtom215/matchpoint/internal/metrics"
	"github.com/tomtom215/matchpoint/internal/models"
	"github.com/tomtom215/matchpoint/internal/vector"
	"github.com/tomtom215/matchpoint/internal/vectorstore"
)

// JobStore is the queue persistence the worker drives.
type JobStore interface {
	Enqueue(ctx context.Context, p database.EnqueueParams) (*models.EmbeddingJob, bool, error)
	GetJob(ctx context.Context, id string) (*models.EmbeddingJob, error)
	GetPendingJobs(ctx context.Context, limit int) ([]*models.EmbeddingJob, error)
	MarkProcessing(ctx context.Context, id string) (*models.EmbeddingJob, error)
	MarkCompleted(ctx context.Context, id string) error
	MarkPending(ctx context.Context, id, errMsg string) error
	MarkFailed(ctx context.Context, id, errMsg string) error
	QueueStats(ctx context.Context) (*models.QueueStats, error)
}

// RecordSource loads the records vectors are encoded from.
type RecordSource interface {
	GetUserRecord(ctx context.Context, id string) (vector.Record, error)
	GetMatchRecord(ctx context.Context, id string) (vector.Record, error)
}

// Config tunes the worker.
type Config struct {
	// BatchSize is the default number of jobs per batch.
	BatchSize int

	// Concurrency is the default number of jobs processed in parallel.
	Concurrency int

	// JobsPerSecond throttles job starts. Zero disables throttling.
	JobsPerSecond float64

	// JobTimeout bounds encoding and persisting one job.
	JobTimeout time.Duration

	// TriggerPriority is the priority TriggerUpdate enqueues at.
	TriggerPriority int
}

// DefaultConfig returns the worker defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:       models.DefaultBatchSize,
		Concurrency:     1,
		JobTimeout:      30 * time.Second,
		TriggerPriority: models.ManualTriggerPriority,
	}
}

// Options override the worker defaults for one batch.
type Options struct {
	BatchSize   int  `json:"batch_size"`
	Concurrency int  `json:"concurrency"`
	DryRun      bool `json:"dry_run"`
}

// Job outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeRetried   = "retried"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
	OutcomeDryRun    = "dry_run"
)

// JobResult reports one job of a batch.
type JobResult struct {
	JobID      string          `json:"job_id"`
	EntityID   string          `json:"entity_id"`
	EntityType string          `json:"entity_type"`
	Outcome    string          `json:"outcome"`
	Attempts   int             `json:"attempts"`
	Error      string          `json:"error,omitempty"`
	Preview    *vector.Summary `json:"preview,omitempty"`
	DurationMs int64           `json:"duration_ms"`
}

// BatchResult summarises a batch. Skipped counts jobs another worker
// claimed first and jobs of an unknown kind.
type BatchResult struct {
	Processed  int         `json:"processed"`
	Failed     int         `json:"failed"`
	Retried    int         `json:"retried"`
	Skipped    int         `json:"skipped"`
	Errors     []string    `json:"errors"`
	Jobs       []JobResult `json:"jobs"`
	DryRun     bool        `json:"dry_run"`
	DurationMs int64       `json:"duration_ms"`
}

func (r *BatchResult) add(j JobResult) {
	r.Jobs = append(r.Jobs, j)
	switch j.Outcome {
	case OutcomeCompleted:
		r.Processed++
	case OutcomeRetried:
		r.Retried++
	case OutcomeFailed:
		r.Failed++
	case OutcomeSkipped:
		r.Skipped++
	}
	if j.Error != "" {
		r.Errors = append(r.Errors, fmt.Sprintf("Entry %s: %s", j.JobID, j.Error))
	}
}

// Worker drains the embedding queue.
type Worker struct {
	jobs    JobStore
	records RecordSource
	vectors vectorstore.Store
	encoder *vector.Encoder
	cfg     Config
	limiter *rate.Limiter
	logger  zerolog.Logger

	processing atomic.Bool
}

// NewWorker creates a worker.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewWorker(jobs JobStore, records RecordSource, vectors vectorstore.Store, encoder *vector.Encoder, cfg Config, logger zerolog.Logger) *Worker {
	def := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = def.JobTimeout
	}
	if cfg.TriggerPriority <= 0 {
		cfg.TriggerPriority = def.TriggerPriority
	}

	w := &Worker{
		jobs:    jobs,
		records: records,
		vectors: vectors,
		encoder: encoder,
		cfg:     cfg,
		logger:  logger.With().Str("component", "embedding-worker").Logger(),
	}
	if cfg.JobsPerSecond > 0 {
		burst := int(cfg.JobsPerSecond)
		if burst < 1 {
			burst = 1
		}
		w.limiter = rate.NewLimiter(rate.Limit(cfg.JobsPerSecond), burst)
	}
	return w
}

// Running reports whether a guarded batch is in progress.
func (w *Worker) Running() bool {
	return w.processing.Load()
}

// TryProcessBatch runs ProcessBatch unless another guarded batch is still
// running, in which case it returns ErrAlreadyProcessing.
func (w *Worker) TryProcessBatch(ctx context.Context, opts Options) (*BatchResult, error) {
	if !w.processing.CompareAndSwap(false, true) {
		return nil, ErrAlreadyProcessing
	}
	defer w.processing.Store(false)
	return w.ProcessBatch(ctx, opts)
}

// ProcessBatch processes up to BatchSize pending jobs. Job failures become
// state transitions and are reported in the result; the only errors
// returned are a failed fetch and context cancellation.
//
// In dry-run mode vectors are encoded and previewed but neither persisted
// nor is any job state changed.
func (w *Worker) ProcessBatch(ctx context.Context, opts Options) (*BatchResult, error) {
	start := time.Now()
	ctx = w.logContext(ctx)
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = w.cfg.BatchSize
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = w.cfg.Concurrency
	}

	result := &BatchResult{DryRun: opts.DryRun, Errors: []string{}, Jobs: []JobResult{}}

	jobs, err := w.jobs.GetPendingJobs(ctx, batchSize)
	metrics.RecordEmbeddingBatch(len(jobs), err)
	if err != nil {
		return nil, fmt.Errorf("fetch pending jobs: %w", err)
	}
	if len(jobs) == 0 {
		logging.Ctx(ctx).Debug().Msg("No pending embedding jobs")
		result.DurationMs = time.Since(start).Milliseconds()
		return result, nil
	}

	logging.Ctx(ctx).Info().
		Int("jobs", len(jobs)).
		Int("concurrency", concurrency).
		Bool("dry_run", opts.DryRun).
		Msg("Processing embedding batch")

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if w.limiter != nil {
				if err := w.limiter.Wait(gctx); err != nil {
					return nil
				}
			}
			var jr JobResult
			if opts.DryRun {
				jr = w.preview(gctx, job)
			} else {
				jr = w.processJob(gctx, job)
			}
			mu.Lock()
			result.add(jr)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	result.DurationMs = time.Since(start).Milliseconds()
	logging.Ctx(ctx).Info().
		Int("processed", result.Processed).
		Int("retried", result.Retried).
		Int("failed", result.Failed).
		Int("skipped", result.Skipped).
		Int64("duration_ms", result.DurationMs).
		Msg("Embedding batch complete")

	w.refreshQueueDepth(ctx)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// TriggerUpdate enqueues a refresh at trigger priority and processes that
// job immediately. If another worker holds the job the result is skipped.
func (w *Worker) TriggerUpdate(ctx context.Context, kind models.EntityKind, entityID string) (*JobResult, error) {
	ctx = w.logContext(ctx)
	job, _, err := w.jobs.Enqueue(ctx, database.EnqueueParams{
		EntityID: entityID,
		Kind:     kind,
		Priority: w.cfg.TriggerPriority,
	})
	if err != nil {
		return nil, fmt.Errorf("enqueue %s %s: %w", kind, entityID, err)
	}
	jr := w.processJob(ctx, job)
	w.refreshQueueDepth(ctx)
	return &jr, nil
}

// logContext attaches the worker logger to ctx, plus a correlation ID when
// the caller did not supply one, so every line of a run shares an ID.
func (w *Worker) logContext(ctx context.Context) context.Context {
	if logging.CorrelationIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}
	return logging.ContextWithLogger(ctx, w.logger)
}

// processJob claims, encodes and persists one job.
func (w *Worker) processJob(ctx context.Context, job *models.EmbeddingJob) JobResult {
	start := time.Now()
	jr := JobResult{
		JobID:      job.ID,
		EntityID:   job.EntityID,
		EntityType: job.EntityType,
		Attempts:   job.Attempts,
	}
	log := logging.CtxWith(ctx).
		Str("job_id", job.ID).
		Str("entity_id", job.EntityID).
		Str("entity_type", job.EntityType).
		Logger()

	claimed, err := w.jobs.MarkProcessing(ctx, job.ID)
	if err != nil {
		jr.Outcome = OutcomeSkipped
		if !errors.Is(err, database.ErrJobNotClaimable) {
			jr.Error = err.Error()
			log.Warn().Err(err).Msg("Failed to claim job")
		} else {
			log.Debug().Msg("Job no longer claimable")
		}
		metrics.RecordEmbeddingJob(job.EntityType, jr.Outcome, 0)
		return jr
	}
	jr.Attempts = claimed.Attempts

	// State writes must land even if the job deadline expired.
	stateCtx, stateCancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer stateCancel()

	kind, err := claimed.Kind()
	if err != nil {
		d := Transition(*claimed, EventUnknownKind, err)
		jr.Outcome = OutcomeSkipped
		jr.Error = d.Error
		if err := w.apply(stateCtx, claimed, d); err != nil {
			log.Error().Err(err).Msg("Failed to record job failure")
		}
		log.Warn().Msg("Unknown entity type, job failed")
		metrics.RecordEmbeddingJob(job.EntityType, OutcomeFailed, 0)
		return jr
	}

	jobCtx, cancel := context.WithTimeout(ctx, w.cfg.JobTimeout)
	v, err := w.encode(jobCtx, kind, claimed.EntityID)
	if err == nil {
		if perr := w.vectors.Put(jobCtx, kind, claimed.EntityID, v); perr != nil {
			err = fmt.Errorf("%w: %w", ErrPersistenceFailure, perr)
		}
	}
	cancel()

	var d Decision
	if err != nil {
		d = Transition(*claimed, EventFailure, err)
	} else {
		d = Transition(*claimed, EventSuccess, nil)
	}
	if aerr := w.apply(stateCtx, claimed, d); aerr != nil {
		log.Error().Err(aerr).Str("to", string(d.To)).Msg("Failed to record job state")
		jr.Outcome = OutcomeSkipped
		jr.Error = aerr.Error()
		return jr
	}

	switch d.To {
	case models.JobCompleted:
		jr.Outcome = OutcomeCompleted
		log.Debug().Int("attempts", claimed.Attempts).Msg("Vector updated")
	case models.JobPending:
		jr.Outcome = OutcomeRetried
		jr.Error = d.Error
		log.Warn().Err(err).Int("attempts", claimed.Attempts).Msg("Job failed, will retry")
	default:
		jr.Outcome = OutcomeFailed
		jr.Error = d.Error
		log.Error().Err(err).Int("attempts", claimed.Attempts).Msg("Job failed permanently")
	}
	jr.DurationMs = time.Since(start).Milliseconds()
	metrics.RecordEmbeddingJob(string(kind), jr.Outcome, time.Since(start))
	return jr
}

// preview encodes a job without persisting or changing its state.
func (w *Worker) preview(ctx context.Context, job *models.EmbeddingJob) JobResult {
	start := time.Now()
	jr := JobResult{
		JobID:      job.ID,
		EntityID:   job.EntityID,
		EntityType: job.EntityType,
		Attempts:   job.Attempts,
		Outcome:    OutcomeDryRun,
	}
	kind, err := job.Kind()
	if err != nil {
		jr.Outcome = OutcomeSkipped
		jr.Error = err.Error()
		return jr
	}
	jobCtx, cancel := context.WithTimeout(ctx, w.cfg.JobTimeout)
	defer cancel()
	v, err := w.encode(jobCtx, kind, job.EntityID)
	if err != nil {
		jr.Error = err.Error()
	} else {
		s := v.Summarize()
		jr.Preview = &s
	}
	jr.DurationMs = time.Since(start).Milliseconds()
	metrics.RecordEmbeddingJob(string(kind), OutcomeDryRun, 0)
	return jr
}

// Encode loads and encodes an entity without persisting it.
func (w *Worker) Encode(ctx context.Context, kind models.EntityKind, entityID string) (vector.Vector, error) {
	return w.encode(ctx, kind, entityID)
}

func (w *Worker) encode(ctx context.Context, kind models.EntityKind, entityID string) (vector.Vector, error) {
	var (
		rec vector.Record
		err error
	)
	switch kind {
	case models.EntityUser:
		rec, err = w.records.GetUserRecord(ctx, entityID)
	case models.EntityMatch:
		rec, err = w.records.GetMatchRecord(ctx, entityID)
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownEntityKind, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load %s %s: %w", ErrEncodingFailure, kind, entityID, err)
	}

	if kind == models.EntityUser {
		return w.encoder.EncodeUser(rec), nil
	}
	return w.encoder.EncodeMatch(rec), nil
}

func (w *Worker) apply(ctx context.Context, job *models.EmbeddingJob, d Decision) error {
	if !d.Allowed {
		return fmt.Errorf("job %s: no transition from %s", job.ID, job.Status)
	}
	switch d.To {
	case models.JobCompleted:
		return w.jobs.MarkCompleted(ctx, job.ID)
	case models.JobPending:
		return w.jobs.MarkPending(ctx, job.ID, d.Error)
	case models.JobFailed:
		return w.jobs.MarkFailed(ctx, job.ID, d.Error)
	default:
		return fmt.Errorf("job %s: unexpected target state %s", job.ID, d.To)
	}
}

func (w *Worker) refreshQueueDepth(ctx context.Context) {
	stats, err := w.jobs.QueueStats(context.WithoutCancel(ctx))
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Msg("Queue stats unavailable")
		return
	}
	metrics.UpdateQueueDepth(stats.Pending, stats.Processing, stats.Completed, stats.Failed)
}

// Stats returns the queue counts.
func (w *Worker) Stats(ctx context.Context) (*models.QueueStats, error) {
	return w.jobs.QueueStats(ctx)
}
