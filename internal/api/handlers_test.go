// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/matchpoint/internal/database"
	"github.com/tomtom215/matchpoint/internal/models"
	"github.com/tomtom215/matchpoint/internal/queue"
	"github.com/tomtom215/matchpoint/internal/ranker"
	"github.com/tomtom215/matchpoint/internal/similarity"
)

type fakeStore struct {
	mu           sync.Mutex
	pingErr      error
	profiles     map[string]json.RawMessage
	matches      map[string]*models.MatchRecord
	participants map[string][]string
	hosted       map[string][]string
	enqueued     []database.EnqueueParams
	enqueueErr   error
	active       map[string]*models.EmbeddingJob
	stats        models.QueueStats
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:     make(map[string]json.RawMessage),
		matches:      make(map[string]*models.MatchRecord),
		participants: make(map[string][]string),
		hosted:       make(map[string][]string),
		active:       make(map[string]*models.EmbeddingJob),
	}
}

func (s *fakeStore) Ping(context.Context) error { return s.pingErr }

func (s *fakeStore) UpsertProfile(_ context.Context, id string, data json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[id] = data
	return nil
}

func (s *fakeStore) UpsertMatch(_ context.Context, m *models.MatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.matches[m.ID] = &cp
	return nil
}

func (s *fakeStore) GetMatch(_ context.Context, id string) (*models.MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, fmt.Errorf("match %s: %w", id, database.ErrNotFound)
	}
	return m, nil
}

func (s *fakeStore) AddParticipant(_ context.Context, matchID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[matchID] = append(s.participants[matchID], userID)
	return nil
}

func (s *fakeStore) HostedMatchIDs(_ context.Context, hostID string) ([]string, error) {
	return s.hosted[hostID], nil
}

func (s *fakeStore) Enqueue(_ context.Context, p database.EnqueueParams) (*models.EmbeddingJob, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enqueueErr != nil {
		return nil, false, s.enqueueErr
	}
	s.enqueued = append(s.enqueued, p)
	key := string(p.Kind) + ":" + p.EntityID
	if job, ok := s.active[key]; ok {
		return job, false, nil
	}
	job := &models.EmbeddingJob{
		ID:         fmt.Sprintf("job-%d", len(s.active)+1),
		EntityID:   p.EntityID,
		EntityType: string(p.Kind),
		Status:     models.JobPending,
		Priority:   p.Priority,
	}
	s.active[key] = job
	return job, true, nil
}

func (s *fakeStore) GetJob(_ context.Context, id string) (*models.EmbeddingJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.active {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, fmt.Errorf("job %s: %w", id, database.ErrNotFound)
}

func (s *fakeStore) ListJobs(_ context.Context, f database.JobFilter) ([]*models.EmbeddingJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.EmbeddingJob
	for _, j := range s.active {
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

func (s *fakeStore) QueueStats(context.Context) (*models.QueueStats, error) {
	st := s.stats
	return &st, nil
}

type fakeWorker struct {
	batchErr  error
	batchOpts queue.Options
	triggered []string
	running   bool
}

func (w *fakeWorker) TryProcessBatch(_ context.Context, opts queue.Options) (*queue.BatchResult, error) {
	w.batchOpts = opts
	if w.batchErr != nil {
		return nil, w.batchErr
	}
	return &queue.BatchResult{Processed: 2, Errors: []string{}, DryRun: opts.DryRun}, nil
}

func (w *fakeWorker) TriggerUpdate(_ context.Context, kind models.EntityKind, id string) (*queue.JobResult, error) {
	w.triggered = append(w.triggered, string(kind)+":"+id)
	return &queue.JobResult{JobID: "j1", EntityID: id, EntityType: string(kind), Outcome: queue.OutcomeCompleted, Attempts: 1}, nil
}

func (w *fakeWorker) Running() bool { return w.running }

type fakeRanker struct {
	last ranker.Request
	err  error
}

func (f *fakeRanker) Rank(_ context.Context, req ranker.Request) (*models.RecommendationResponse, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.RecommendationResponse{
		UserID: req.UserID,
		Recommendations: []models.Recommendation{
			{MatchID: "m1", Score: 0.93, Percentage: 93, Tier: "perfect", Explanation: "Perfect match! 93% compatibility"},
		},
		Count: 1,
		Limit: 10,
	}, nil
}

type testServer struct {
	store  *fakeStore
	worker *fakeWorker
	ranker *fakeRanker
	router http.Handler
}

func newTestServer(checks map[string]ReadinessCheck) *testServer {
	ts := &testServer{store: newFakeStore(), worker: &fakeWorker{}, ranker: &fakeRanker{}}
	h := NewHandler(ts.store, ts.worker, ts.ranker, "test", checks)
	mwCfg := DefaultChiMiddlewareConfig()
	mwCfg.RateLimitDisabled = true
	ts.router = NewRouter(h, NewChiMiddleware(mwCfg))
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	var resp APIResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, resp
}

func dataAs[T any](t *testing.T, resp APIResponse) T {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatal(err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode data %s: %v", raw, err)
	}
	return out
}

func TestHealthLive(t *testing.T) {
	ts := newTestServer(nil)
	rec, resp := ts.do(t, http.MethodGet, "/api/v1/health/live", "")
	if rec.Code != http.StatusOK || !resp.Success {
		t.Fatalf("status = %d, resp = %+v", rec.Code, resp)
	}
	if rec.Header().Get("X-Request-ID") == "" || resp.Meta == nil || resp.Meta.RequestID == "" {
		t.Error("request id missing from header or meta")
	}
}

func TestHealthReady(t *testing.T) {
	ts := newTestServer(map[string]ReadinessCheck{
		"events": func(context.Context) error { return nil },
	})
	rec, _ := ts.do(t, http.MethodGet, "/api/v1/health/ready", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("ready status = %d", rec.Code)
	}

	ts.store.pingErr = errors.New("db closed")
	rec, resp := ts.do(t, http.MethodGet, "/api/v1/health/ready", "")
	if rec.Code != http.StatusServiceUnavailable || resp.Success {
		t.Fatalf("not-ready status = %d", rec.Code)
	}
	if resp.Error.Code != ErrCodeServiceUnavailable {
		t.Errorf("code = %q", resp.Error.Code)
	}
}

func TestPutProfile_EnqueuesUserAndHostedMatches(t *testing.T) {
	ts := newTestServer(nil)
	ts.store.hosted["u1"] = []string{"m1", "m2"}

	rec, resp := ts.do(t, http.MethodPut, "/api/v1/profiles/u1", `{"sport_preferences":["Tennis"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	res := dataAs[RecordWriteResult](t, resp)
	if res.ID != "u1" || len(res.JobIDs) != 3 || res.HostedMatches != 2 {
		t.Errorf("result = %+v", res)
	}
	if string(ts.store.profiles["u1"]) == "" {
		t.Error("profile not stored")
	}
	want := []string{"user:u1", "match:m1", "match:m2"}
	for i, p := range ts.store.enqueued {
		if got := string(p.Kind) + ":" + p.EntityID; got != want[i] {
			t.Errorf("enqueue %d = %s, want %s", i, got, want[i])
		}
	}
}

func TestPutProfile_Rejects(t *testing.T) {
	ts := newTestServer(nil)
	for _, body := range []string{"", "not json", `["a"]`} {
		rec, resp := ts.do(t, http.MethodPut, "/api/v1/profiles/u1", body)
		if rec.Code != http.StatusBadRequest || resp.Error == nil || resp.Error.Code != ErrCodeBadRequest {
			t.Errorf("body %q: status = %d", body, rec.Code)
		}
	}
	if len(ts.store.profiles) != 0 {
		t.Error("invalid profile stored")
	}
}

func TestPutProfile_EnqueueFailureStillStores(t *testing.T) {
	ts := newTestServer(nil)
	ts.store.enqueueErr = errors.New("queue locked")
	rec, resp := ts.do(t, http.MethodPut, "/api/v1/profiles/u1", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	res := dataAs[RecordWriteResult](t, resp)
	if len(res.EnqueueErrors) != 1 || len(res.JobIDs) != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestPutMatch(t *testing.T) {
	ts := newTestServer(nil)
	body := `{"host_id":"h1","title":"Pickup","status":"upcoming","start_time":"2026-10-19T18:00:00Z","data":{"sport_name":"Basketball"}}`
	rec, resp := ts.do(t, http.MethodPut, "/api/v1/matches/m1", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	m := ts.store.matches["m1"]
	if m == nil || m.ID != "m1" || m.HostID != "h1" || !m.StartTime.Equal(time.Date(2026, 10, 19, 18, 0, 0, 0, time.UTC)) {
		t.Errorf("stored match = %+v", m)
	}
	if res := dataAs[RecordWriteResult](t, resp); len(res.JobIDs) != 1 {
		t.Errorf("result = %+v", res)
	}

	rec, resp = ts.do(t, http.MethodPut, "/api/v1/matches/m2", `{"host_id":"h1","status":"someday"}`)
	if rec.Code != http.StatusBadRequest || resp.Error.Code != ErrCodeValidationFailed {
		t.Errorf("invalid match status = %d, resp = %+v", rec.Code, resp.Error)
	}
}

func TestAddParticipant(t *testing.T) {
	ts := newTestServer(nil)
	ts.store.matches["m1"] = &models.MatchRecord{ID: "m1"}

	rec, _ := ts.do(t, http.MethodPost, "/api/v1/matches/m1/participants", `{"user_id":"u2"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := ts.store.participants["m1"]; len(got) != 1 || got[0] != "u2" {
		t.Errorf("participants = %v", got)
	}

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/matches/nope/participants", `{"user_id":"u2"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown match status = %d", rec.Code)
	}
	rec, _ = ts.do(t, http.MethodPost, "/api/v1/matches/m1/participants", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing user status = %d", rec.Code)
	}
}

func TestEnqueue(t *testing.T) {
	ts := newTestServer(nil)

	rec, resp := ts.do(t, http.MethodPost, "/api/v1/embeddings/queue", `{"entity_id":"u1","entity_type":"user_v3","priority":4}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	res := dataAs[EnqueueResult](t, resp)
	if !res.Created || res.Job.EntityType != "user" {
		t.Errorf("result = %+v", res)
	}
	if p := ts.store.enqueued[0]; p.Kind != models.EntityUser || p.Priority != 4 {
		t.Errorf("params = %+v", p)
	}

	rec, resp = ts.do(t, http.MethodPost, "/api/v1/embeddings/queue", `{"entity_id":"u1","entity_type":"user"}`)
	if rec.Code != http.StatusOK || dataAs[EnqueueResult](t, resp).Created {
		t.Errorf("duplicate enqueue status = %d", rec.Code)
	}

	rec, resp = ts.do(t, http.MethodPost, "/api/v1/embeddings/queue", `{"entity_id":"v1","entity_type":"venue"}`)
	if rec.Code != http.StatusBadRequest || resp.Error.Code != ErrCodeValidationFailed {
		t.Errorf("unknown kind status = %d", rec.Code)
	}
}

func TestProcessQueue(t *testing.T) {
	ts := newTestServer(nil)

	rec, resp := ts.do(t, http.MethodPost, "/api/v1/embeddings/queue/process", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("empty body status = %d", rec.Code)
	}
	if res := dataAs[queue.BatchResult](t, resp); res.Processed != 2 {
		t.Errorf("result = %+v", res)
	}

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/embeddings/queue/process", `{"batch_size":5,"dry_run":true}`)
	if rec.Code != http.StatusOK || ts.worker.batchOpts.BatchSize != 5 || !ts.worker.batchOpts.DryRun {
		t.Errorf("status = %d, opts = %+v", rec.Code, ts.worker.batchOpts)
	}

	ts.worker.batchErr = queue.ErrAlreadyProcessing
	rec, resp = ts.do(t, http.MethodPost, "/api/v1/embeddings/queue/process", "")
	if rec.Code != http.StatusConflict || resp.Error.Code != ErrCodeAlreadyProcessing {
		t.Errorf("overlap status = %d", rec.Code)
	}
}

func TestQueueStatusAndJobs(t *testing.T) {
	ts := newTestServer(nil)
	ts.store.stats = models.QueueStats{Pending: 2, Failed: 1, Total: 3}
	ts.worker.running = true

	rec, resp := ts.do(t, http.MethodGet, "/api/v1/embeddings/queue/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	st := dataAs[map[string]any](t, resp)
	if st["pending"] != float64(2) || st["total"] != float64(3) || st["batch_running"] != true {
		t.Errorf("status body = %v", st)
	}

	_, _ = ts.do(t, http.MethodPost, "/api/v1/embeddings/queue", `{"entity_id":"u1","entity_type":"user"}`)
	rec, resp = ts.do(t, http.MethodGet, "/api/v1/embeddings/queue/jobs?status=pending", "")
	if rec.Code != http.StatusOK || len(dataAs[[]models.EmbeddingJob](t, resp)) != 1 {
		t.Errorf("list status = %d body = %s", rec.Code, rec.Body.String())
	}
	rec, _ = ts.do(t, http.MethodGet, "/api/v1/embeddings/queue/jobs?status=bogus", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad status filter = %d", rec.Code)
	}
	rec, _ = ts.do(t, http.MethodGet, "/api/v1/embeddings/queue/jobs/job-1", "")
	if rec.Code != http.StatusOK {
		t.Errorf("get job = %d", rec.Code)
	}
	rec, _ = ts.do(t, http.MethodGet, "/api/v1/embeddings/queue/jobs/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing job = %d", rec.Code)
	}
}

func TestTrigger(t *testing.T) {
	ts := newTestServer(nil)
	rec, resp := ts.do(t, http.MethodPost, "/api/v1/embeddings/trigger", `{"entity_id":"m1","entity_type":"match"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if res := dataAs[queue.JobResult](t, resp); res.Outcome != queue.OutcomeCompleted {
		t.Errorf("result = %+v", res)
	}
	if len(ts.worker.triggered) != 1 || ts.worker.triggered[0] != "match:m1" {
		t.Errorf("triggered = %v", ts.worker.triggered)
	}
}

func TestRecommendations(t *testing.T) {
	ts := newTestServer(nil)
	rec, resp := ts.do(t, http.MethodPost, "/api/v1/recommendations", `{"user_id":"u1","limit":5,"min_similarity":0.5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	out := dataAs[models.RecommendationResponse](t, resp)
	if out.Count != 1 || out.Recommendations[0].MatchID != "m1" {
		t.Errorf("response = %+v", out)
	}
	if ts.ranker.last.Limit != 5 || ts.ranker.last.MinSimilarity != 0.5 {
		t.Errorf("request = %+v", ts.ranker.last)
	}

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/users/u7/recommendations?limit=3&offset=6&min_similarity=0.2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}
	if got := ts.ranker.last; got.UserID != "u7" || got.Limit != 3 || got.Offset != 6 || got.MinSimilarity != 0.2 {
		t.Errorf("request = %+v", got)
	}

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/users/u7/recommendations?limit=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", rec.Code)
	}
	rec, _ = ts.do(t, http.MethodPost, "/api/v1/recommendations", `{"user_id":"u1","min_similarity":2}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad threshold status = %d", rec.Code)
	}
}

func TestRecommendations_ErrorMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{fmt.Errorf("u1: %w", ranker.ErrVectorNotReady), http.StatusConflict, ErrCodeVectorNotReady},
		{fmt.Errorf("u1: %w", ranker.ErrUserNotFound), http.StatusNotFound, ErrCodeUserNotFound},
		{fmt.Errorf("%w: limit", ranker.ErrInvalidRequest), http.StatusBadRequest, ErrCodeValidationFailed},
		{fmt.Errorf("user u1: %w", similarity.ErrDimensionMismatch), http.StatusUnprocessableEntity, ErrCodeDimensionMismatch},
		{errors.New("disk on fire"), http.StatusInternalServerError, ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			ts := newTestServer(nil)
			ts.ranker.err = tt.err
			rec, resp := ts.do(t, http.MethodPost, "/api/v1/recommendations", `{"user_id":"u1"}`)
			if rec.Code != tt.wantStatus || resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("status = %d, error = %+v", rec.Code, resp.Error)
			}
		})
	}
}

func TestRouter_NotFoundAndMetrics(t *testing.T) {
	ts := newTestServer(nil)
	rec, resp := ts.do(t, http.MethodGet, "/api/v1/nope", "")
	if rec.Code != http.StatusNotFound || resp.Error == nil {
		t.Errorf("status = %d", rec.Code)
	}

	rec, _ = ts.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "api_active_requests") {
		t.Errorf("metrics status = %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	h := NewHandler(newFakeStore(), &fakeWorker{}, &fakeRanker{}, "test", nil)
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitRequests = 2
	cfg.RateLimitWindow = time.Minute
	router := NewRouter(h, NewChiMiddleware(cfg))

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u1/recommendations", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", last)
	}
}
