// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/matchpoint/internal/config"
	"github.com/tomtom215/matchpoint/internal/models"
	"github.com/tomtom215/matchpoint/internal/vector"
)

// testDBSemaphore limits concurrent DuckDB instances across parallel tests.
var testDBSemaphore = make(chan struct{}, 2)

// testClock hands out strictly increasing timestamps.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

var testEpoch = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB"})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	clock := &testClock{now: testEpoch}
	db.now = clock.Now
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func mustEnqueue(t *testing.T, db *DB, p EnqueueParams) *models.EmbeddingJob {
	t.Helper()
	job, _, err := db.Enqueue(context.Background(), p)
	if err != nil {
		t.Fatalf("Enqueue(%+v) error = %v", p, err)
	}
	return job
}

func TestNew_CreatesSchema(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	for _, table := range []string{"profiles", "matches", "match_participants", "user_vectors", "match_vectors", "embedding_queue"} {
		var n int
		if err := db.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestEnsureContext(t *testing.T) {
	ctx, cancel := ensureContext(context.Background())
	defer cancel()
	if _, ok := ctx.Deadline(); !ok {
		t.Error("expected a default deadline")
	}

	parent, parentCancel := context.WithTimeout(context.Background(), time.Minute)
	defer parentCancel()
	ctx2, cancel2 := ensureContext(parent)
	defer cancel2()
	if ctx2 != parent {
		t.Error("context with a deadline should be returned unchanged")
	}
}

func TestEnqueue_NewAndDedupe(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, created, err := db.Enqueue(ctx, EnqueueParams{EntityID: "u1", Kind: models.EntityUser})
	if err != nil || !created {
		t.Fatalf("Enqueue() = %v, created=%v", err, created)
	}
	if first.Status != models.JobPending || first.MaxAttempts != models.DefaultMaxAttempts || first.Attempts != 0 {
		t.Errorf("new job = %+v", first)
	}
	if first.ID == "" {
		t.Error("job id should be set")
	}

	second, created, err := db.Enqueue(ctx, EnqueueParams{EntityID: "u1", Kind: models.EntityUser, Priority: 10, MaxAttempts: 5})
	if err != nil || created {
		t.Fatalf("second Enqueue() = %v, created=%v", err, created)
	}
	if second.ID != first.ID {
		t.Errorf("pending job should be reused: %s != %s", second.ID, first.ID)
	}
	if second.Priority != 10 || second.MaxAttempts != 5 {
		t.Errorf("priority/max_attempts not raised: %+v", second)
	}

	third, _, err := db.Enqueue(ctx, EnqueueParams{EntityID: "u1", Kind: models.EntityUser, Priority: 1, MaxAttempts: 2})
	if err != nil {
		t.Fatal(err)
	}
	if third.Priority != 10 || third.MaxAttempts != 5 {
		t.Errorf("values must never be lowered: %+v", third)
	}

	// Same id, different kind is a separate entity.
	if _, created, _ := db.Enqueue(ctx, EnqueueParams{EntityID: "u1", Kind: models.EntityMatch}); !created {
		t.Error("match job should be created independently of the user job")
	}

	stats, err := db.QueueStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Pending != 2 || stats.Total != 2 {
		t.Errorf("stats = %+v, want 2 pending", stats)
	}
}

func TestEnqueue_AfterCompletionInsertsNewJob(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	job := mustEnqueue(t, db, EnqueueParams{EntityID: "m1", Kind: models.EntityMatch})
	if _, err := db.MarkProcessing(ctx, job.ID); err != nil {
		t.Fatal(err)
	}
	if err := db.MarkCompleted(ctx, job.ID); err != nil {
		t.Fatal(err)
	}

	next, created, err := db.Enqueue(ctx, EnqueueParams{EntityID: "m1", Kind: models.EntityMatch})
	if err != nil || !created || next.ID == job.ID {
		t.Errorf("Enqueue after completion = %+v, created=%v, err=%v", next, created, err)
	}
}

func TestEnqueue_WhileProcessingQueuesAnotherRefresh(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	job := mustEnqueue(t, db, EnqueueParams{EntityID: "u1", Kind: models.EntityUser})
	if _, err := db.MarkProcessing(ctx, job.ID); err != nil {
		t.Fatal(err)
	}

	// The record changed after the worker may have read it.
	next, created, err := db.Enqueue(ctx, EnqueueParams{EntityID: "u1", Kind: models.EntityUser})
	if err != nil {
		t.Fatal(err)
	}
	if !created || next.ID == job.ID || next.Status != models.JobPending {
		t.Fatalf("Enqueue during processing = %+v, created=%v", next, created)
	}

	// A further change folds into the new pending job.
	again, created, err := db.Enqueue(ctx, EnqueueParams{EntityID: "u1", Kind: models.EntityUser})
	if err != nil || created || again.ID != next.ID {
		t.Errorf("second Enqueue = %+v, created=%v, err=%v", again, created, err)
	}

	if err := db.MarkCompleted(ctx, job.ID); err != nil {
		t.Fatal(err)
	}
	pending, err := db.GetPendingJobs(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ID != next.ID {
		t.Errorf("pending after completion = %+v, want %s", pending, next.ID)
	}
}

func TestEnqueue_MatchesLegacyRows(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	now := db.now()
	_, err := db.Conn().ExecContext(ctx, `
		INSERT INTO embedding_queue (id, entity_id, entity_type, status, attempts, max_attempts, priority, error, created_at, updated_at)
		VALUES ('legacy-1', 'u9', 'user_v3', 'pending', 0, 3, 0, '', ?, ?)`, now, now)
	if err != nil {
		t.Fatal(err)
	}

	job, created, err := db.Enqueue(ctx, EnqueueParams{EntityID: "u9", Kind: models.EntityUser, Priority: 4})
	if err != nil {
		t.Fatal(err)
	}
	if created || job.ID != "legacy-1" || job.Priority != 4 {
		t.Errorf("legacy job should be reused: %+v created=%v", job, created)
	}
}

func TestEnqueue_ConfiguredMaxAttempts(t *testing.T) {
	db := setupTestDB(t)
	db.SetDefaultMaxAttempts(6)
	db.SetDefaultMaxAttempts(0)

	job := mustEnqueue(t, db, EnqueueParams{EntityID: "u1", Kind: models.EntityUser})
	if job.MaxAttempts != 6 {
		t.Errorf("max_attempts = %d, want 6", job.MaxAttempts)
	}
	explicit := mustEnqueue(t, db, EnqueueParams{EntityID: "m1", Kind: models.EntityMatch, MaxAttempts: 2})
	if explicit.MaxAttempts != 2 {
		t.Errorf("explicit max_attempts = %d, want 2", explicit.MaxAttempts)
	}
}

func TestEnqueue_Validation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, _, err := db.Enqueue(ctx, EnqueueParams{Kind: models.EntityUser}); err == nil {
		t.Error("expected error for empty entity id")
	}
	if _, _, err := db.Enqueue(ctx, EnqueueParams{EntityID: "x", Kind: "venue"}); !errors.Is(err, models.ErrUnknownEntityKind) {
		t.Errorf("Enqueue(venue) error = %v, want ErrUnknownEntityKind", err)
	}
}

func TestGetPendingJobs_Ordering(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	low := mustEnqueue(t, db, EnqueueParams{EntityID: "a", Kind: models.EntityUser, Priority: 0})
	high := mustEnqueue(t, db, EnqueueParams{EntityID: "b", Kind: models.EntityUser, Priority: 10})
	low2 := mustEnqueue(t, db, EnqueueParams{EntityID: "c", Kind: models.EntityUser, Priority: 0})
	mid := mustEnqueue(t, db, EnqueueParams{EntityID: "d", Kind: models.EntityMatch, Priority: 5})

	jobs, err := db.GetPendingJobs(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{high.ID, mid.ID, low.ID, low2.ID}
	if len(jobs) != len(want) {
		t.Fatalf("got %d jobs, want %d", len(jobs), len(want))
	}
	for i, id := range want {
		if jobs[i].ID != id {
			t.Errorf("jobs[%d] = %s (%s), want %s", i, jobs[i].ID, jobs[i].EntityID, id)
		}
	}

	limited, err := db.GetPendingJobs(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 || limited[0].ID != high.ID {
		t.Errorf("limit not applied: %d jobs", len(limited))
	}
}

func TestMarkProcessing_CAS(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	job := mustEnqueue(t, db, EnqueueParams{EntityID: "u1", Kind: models.EntityUser})

	claimed, err := db.MarkProcessing(ctx, job.ID)
	if err != nil {
		t.Fatalf("MarkProcessing() error = %v", err)
	}
	if claimed.Status != models.JobProcessing || claimed.Attempts != 1 {
		t.Errorf("claimed = %+v", claimed)
	}

	if _, err := db.MarkProcessing(ctx, job.ID); !errors.Is(err, ErrJobNotClaimable) {
		t.Errorf("second claim error = %v, want ErrJobNotClaimable", err)
	}
	if _, err := db.MarkProcessing(ctx, "missing"); !errors.Is(err, ErrJobNotClaimable) {
		t.Errorf("missing job claim error = %v, want ErrJobNotClaimable", err)
	}
}

func TestMarkProcessing_ConcurrentClaims(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	job := mustEnqueue(t, db, EnqueueParams{EntityID: "u1", Kind: models.EntityUser})

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := db.MarkProcessing(ctx, job.ID)
			switch {
			case err == nil:
				mu.Lock()
				wins++
				mu.Unlock()
			case !errors.Is(err, ErrJobNotClaimable):
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("%d workers claimed the job, want exactly 1", wins)
	}
	got, err := db.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", got.Attempts)
	}
}

func TestRetryLifecycle_ExhaustedJobIsNotRefetched(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	job := mustEnqueue(t, db, EnqueueParams{EntityID: "u1", Kind: models.EntityUser, MaxAttempts: 2})

	// First attempt fails and is retried.
	if _, err := db.MarkProcessing(ctx, job.ID); err != nil {
		t.Fatal(err)
	}
	if err := db.MarkPending(ctx, job.ID, "boom"); err != nil {
		t.Fatal(err)
	}
	retry, err := db.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if retry.Status != models.JobPending || retry.Attempts != 1 || retry.Error != "boom" {
		t.Errorf("after retry = %+v", retry)
	}

	// attempts = max-1: the next failure is terminal.
	if _, err := db.MarkProcessing(ctx, job.ID); err != nil {
		t.Fatal(err)
	}
	if err := db.MarkFailed(ctx, job.ID, "boom again"); err != nil {
		t.Fatal(err)
	}

	pending, err := db.GetPendingJobs(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("failed job re-fetched: %+v", pending)
	}
	final, err := db.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if final.Status != models.JobFailed || final.Attempts != 2 || final.Error != "boom again" {
		t.Errorf("final = %+v", final)
	}
	if _, err := db.MarkProcessing(ctx, job.ID); !errors.Is(err, ErrJobNotClaimable) {
		t.Errorf("failed job claimable: %v", err)
	}
}

func TestGetPendingJobs_SkipsExhaustedPendingRows(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	now := db.now()
	_, err := db.Conn().ExecContext(ctx, `
		INSERT INTO embedding_queue (id, entity_id, entity_type, status, attempts, max_attempts, priority, error, created_at, updated_at)
		VALUES ('spent', 'u1', 'user', 'pending', 3, 3, 0, '', ?, ?)`, now, now)
	if err != nil {
		t.Fatal(err)
	}
	jobs, err := db.GetPendingJobs(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 0 {
		t.Errorf("exhausted row returned: %+v", jobs)
	}
}

func TestMarkCompleted_ClearsError(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	job := mustEnqueue(t, db, EnqueueParams{EntityID: "u1", Kind: models.EntityUser})
	if _, err := db.MarkProcessing(ctx, job.ID); err != nil {
		t.Fatal(err)
	}
	if err := db.MarkPending(ctx, job.ID, "transient"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.MarkProcessing(ctx, job.ID); err != nil {
		t.Fatal(err)
	}
	if err := db.MarkCompleted(ctx, job.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := db.GetJob(ctx, job.ID)
	if got.Status != models.JobCompleted || got.Error != "" || got.Attempts != 2 {
		t.Errorf("completed job = %+v", got)
	}

	if err := db.MarkPending(ctx, job.ID, "late"); !errors.Is(err, ErrJobNotProcessing) {
		t.Errorf("MarkPending on completed job error = %v, want ErrJobNotProcessing", err)
	}
}

func TestResetStaleJobs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	retryable := mustEnqueue(t, db, EnqueueParams{EntityID: "u1", Kind: models.EntityUser, MaxAttempts: 3})
	spent := mustEnqueue(t, db, EnqueueParams{EntityID: "u2", Kind: models.EntityUser, MaxAttempts: 1})
	for _, id := range []string{retryable.ID, spent.ID} {
		if _, err := db.MarkProcessing(ctx, id); err != nil {
			t.Fatal(err)
		}
	}
	fresh := mustEnqueue(t, db, EnqueueParams{EntityID: "u3", Kind: models.EntityUser})
	if _, err := db.MarkProcessing(ctx, fresh.ID); err != nil {
		t.Fatal(err)
	}
	freshJob, _ := db.GetJob(ctx, fresh.ID)

	reset, failed, err := db.ResetStaleJobs(ctx, freshJob.UpdatedAt)
	if err != nil {
		t.Fatal(err)
	}
	if reset != 1 || failed != 1 {
		t.Errorf("reset=%d failed=%d, want 1 and 1", reset, failed)
	}

	r, _ := db.GetJob(ctx, retryable.ID)
	if r.Status != models.JobPending || r.Attempts != 1 {
		t.Errorf("retryable = %+v", r)
	}
	s, _ := db.GetJob(ctx, spent.ID)
	if s.Status != models.JobFailed || s.Error != models.StaleProcessingMessage {
		t.Errorf("spent = %+v", s)
	}
	f, _ := db.GetJob(ctx, fresh.ID)
	if f.Status != models.JobProcessing {
		t.Errorf("fresh job touched: %+v", f)
	}
}

func TestListJobs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	mustEnqueue(t, db, EnqueueParams{EntityID: "u1", Kind: models.EntityUser})
	j2 := mustEnqueue(t, db, EnqueueParams{EntityID: "u2", Kind: models.EntityUser})
	if _, err := db.MarkProcessing(ctx, j2.ID); err != nil {
		t.Fatal(err)
	}

	all, err := db.ListJobs(ctx, JobFilter{})
	if err != nil || len(all) != 2 || all[0].ID != j2.ID {
		t.Errorf("ListJobs() = %d jobs, err=%v", len(all), err)
	}
	processing, err := db.ListJobs(ctx, JobFilter{Status: models.JobProcessing})
	if err != nil || len(processing) != 1 || processing[0].ID != j2.ID {
		t.Errorf("ListJobs(processing) = %+v, err=%v", processing, err)
	}
	byEntity, err := db.ListJobs(ctx, JobFilter{EntityID: "u1"})
	if err != nil || len(byEntity) != 1 {
		t.Errorf("ListJobs(u1) = %+v, err=%v", byEntity, err)
	}
}

func TestVectors_UpsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	v := vector.New(vector.Dimension)
	v[0], v[97] = 0.6, 0.8
	if err := db.UpsertVector(ctx, models.EntityUser, "u1", v); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetVector(ctx, models.EntityUser, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != vector.Dimension || got[0] != 0.6 || got[97] != 0.8 {
		t.Errorf("GetVector() = %v", got.Summarize())
	}

	// Last write wins.
	w := vector.New(vector.Dimension)
	w[1] = 1
	if err := db.UpsertVector(ctx, models.EntityUser, "u1", w); err != nil {
		t.Fatal(err)
	}
	got, _ = db.GetVector(ctx, models.EntityUser, "u1")
	if got[0] != 0 || got[1] != 1 {
		t.Error("vector was not replaced")
	}

	// Kinds are separate namespaces.
	if _, err := db.GetVector(ctx, models.EntityMatch, "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetVector(match, u1) error = %v, want ErrNotFound", err)
	}
	if err := db.UpsertVector(ctx, "venue", "x", w); !errors.Is(err, models.ErrUnknownEntityKind) {
		t.Errorf("UpsertVector(venue) error = %v", err)
	}
}

func TestGetVectors_Batch(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, id := range []string{"m1", "m2"} {
		v := vector.New(vector.Dimension)
		v[0] = 1
		if err := db.UpsertVector(ctx, models.EntityMatch, id, v); err != nil {
			t.Fatal(err)
		}
	}
	got, err := db.GetVectors(ctx, models.EntityMatch, []string{"m1", "m2", "m3"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("got %d vectors, want 2", len(got))
	}
	if _, ok := got["m3"]; ok {
		t.Error("m3 has no vector and should be absent")
	}

	empty, err := db.GetVectors(ctx, models.EntityMatch, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("GetVectors(nil) = %v, %v", empty, err)
	}
}

func TestProfiles(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	data := json.RawMessage(`{"faculty":"ENGINEERING","sport_preferences":["Basketball"]}`)
	if err := db.UpsertProfile(ctx, "u1", data); err != nil {
		t.Fatal(err)
	}
	rec, err := db.GetUserRecord(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if f, _ := rec.String("faculty"); f != "ENGINEERING" {
		t.Errorf("faculty = %q", f)
	}
	if id, _ := rec.String("id"); id != "u1" {
		t.Errorf("id = %q, want u1", id)
	}

	if _, err := db.GetProfile(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProfile(nobody) error = %v, want ErrNotFound", err)
	}
	if err := db.UpsertProfile(ctx, "u2", json.RawMessage(`{not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestGetMatchRecord_MergesHostAndColumns(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.UpsertProfile(ctx, "host", json.RawMessage(`{"faculty":"LAW","gender":"female"}`)); err != nil {
		t.Fatal(err)
	}
	start := time.Date(2026, 10, 19, 18, 0, 0, 0, time.UTC)
	m := &models.MatchRecord{
		ID: "m1", HostID: "host", Title: "Friday hoops", Status: models.MatchStatusUpcoming,
		StartTime: start, Data: json.RawMessage(`{"sport_name":"Basketball"}`),
	}
	if err := db.UpsertMatch(ctx, m); err != nil {
		t.Fatal(err)
	}

	rec, err := db.GetMatchRecord(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if f, _ := rec.String("host", "faculty"); f != "LAW" {
		t.Errorf("host.faculty = %q", f)
	}
	if title, _ := rec.String("title"); title != "Friday hoops" {
		t.Errorf("title = %q", title)
	}
	if got, ok := rec.Time(time.UTC, "start_time"); !ok || !got.Equal(start) {
		t.Errorf("start_time = %v", got)
	}

	stored, err := db.GetMatch(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if !stored.StartTime.Equal(start) || stored.HostID != "host" {
		t.Errorf("GetMatch() = %+v", stored)
	}
	if _, err := db.GetMatchRecord(ctx, "none"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing match error = %v", err)
	}
}

func TestListCandidates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	later := now.Add(48 * time.Hour)
	matches := []*models.MatchRecord{
		{ID: "ok-2", HostID: "h", Status: models.MatchStatusUpcoming, StartTime: later.Add(time.Hour)},
		{ID: "ok-1", HostID: "h", Status: models.MatchStatusActive, StartTime: later},
		{ID: "own", HostID: "u1", Status: models.MatchStatusUpcoming, StartTime: later},
		{ID: "joined", HostID: "h", Status: models.MatchStatusUpcoming, StartTime: later},
		{ID: "past", HostID: "h", Status: models.MatchStatusUpcoming, StartTime: now.Add(-time.Hour)},
		{ID: "done", HostID: "h", Status: "completed", StartTime: later},
		{ID: "cancelled", HostID: "h", Status: "cancelled", StartTime: later},
	}
	for _, m := range matches {
		if err := db.UpsertMatch(ctx, m); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.AddParticipant(ctx, "joined", "u1"); err != nil {
		t.Fatal(err)
	}
	if err := db.AddParticipant(ctx, "joined", "u1"); err != nil {
		t.Errorf("joining twice should be a no-op: %v", err)
	}

	got, err := db.ListCandidates(ctx, CandidateFilter{UserID: "u1", Now: now})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].MatchID != "ok-1" || got[1].MatchID != "ok-2" {
		t.Errorf("candidates = %+v, want ok-1, ok-2", got)
	}

	restricted, err := db.ListCandidates(ctx, CandidateFilter{UserID: "u1", Now: now, MatchIDs: []string{"ok-2", "own"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(restricted) != 1 || restricted[0].MatchID != "ok-2" {
		t.Errorf("restricted = %+v, want ok-2", restricted)
	}
}

func TestHostedMatchIDs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	future := testEpoch.Add(30 * 24 * time.Hour)
	for _, m := range []*models.MatchRecord{
		{ID: "a", HostID: "h", Status: models.MatchStatusUpcoming, StartTime: future},
		{ID: "b", HostID: "h", Status: "completed", StartTime: future},
		{ID: "c", HostID: "other", Status: models.MatchStatusUpcoming, StartTime: future},
	} {
		if err := db.UpsertMatch(ctx, m); err != nil {
			t.Fatal(err)
		}
	}
	ids, err := db.HostedMatchIDs(ctx, "h")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "a" {
		t.Errorf("HostedMatchIDs() = %v, want [a]", ids)
	}
}
