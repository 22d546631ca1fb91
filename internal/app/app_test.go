// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/matchpoint/internal/config"
	"github.com/tomtom215/matchpoint/internal/database"
	"github.com/tomtom215/matchpoint/internal/models"
	"github.com/tomtom215/matchpoint/internal/queue"
	"github.com/tomtom215/matchpoint/internal/ranker"
)

func buildTestComponents(t *testing.T) *Components {
	t.Helper()
	t.Setenv("DUCKDB_PATH", ":memory:")
	t.Setenv("QUEUE_MAX_ATTEMPTS", "4")
	cfg, err := config.LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	c, err := Build(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return c
}

// TestPipeline runs records through the queue and into a ranking.
func TestPipeline(t *testing.T) {
	c := buildTestComponents(t)
	ctx := context.Background()

	mustProfile := func(id, doc string) {
		t.Helper()
		if err := c.DB.UpsertProfile(ctx, id, json.RawMessage(doc)); err != nil {
			t.Fatal(err)
		}
	}
	mustProfile("u1", `{"sport_preferences":["Basketball"],"available_days":["monday"]}`)
	mustProfile("host", `{"sport_preferences":["Basketball","Tennis"]}`)

	start := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Hour)
	for id, sport := range map[string]string{"hoops": "Basketball", "court": "Tennis"} {
		m := &models.MatchRecord{
			ID: id, HostID: "host", Title: sport, Status: models.MatchStatusUpcoming,
			StartTime: start, Data: json.RawMessage(`{"sport_name":"` + sport + `"}`),
		}
		if err := c.DB.UpsertMatch(ctx, m); err != nil {
			t.Fatal(err)
		}
	}

	_, err := c.Ranker.Rank(ctx, ranker.Request{UserID: "u1"})
	if !errors.Is(err, ranker.ErrVectorNotReady) {
		t.Fatalf("Rank before encoding = %v, want ErrVectorNotReady", err)
	}

	for _, p := range []database.EnqueueParams{
		{EntityID: "hoops", Kind: models.EntityMatch},
		{EntityID: "court", Kind: models.EntityMatch},
	} {
		job, _, err := c.DB.Enqueue(ctx, p)
		if err != nil {
			t.Fatal(err)
		}
		if job.MaxAttempts != 4 {
			t.Errorf("max_attempts = %d, want configured 4", job.MaxAttempts)
		}
	}

	res, err := c.Worker.ProcessBatch(ctx, queue.Options{BatchSize: 10})
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	// Two matches plus the user refresh queued by the failed ranking.
	if res.Processed != 3 || res.Failed != 0 {
		t.Fatalf("batch = %+v", res)
	}

	resp, err := c.Ranker.Rank(ctx, ranker.Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if resp.Count < 1 || resp.Recommendations[0].MatchID != "hoops" {
		t.Fatalf("recommendations = %+v", resp.Recommendations)
	}
	if resp.Summary.PendingVectors != 0 || resp.Summary.TotalAnalyzed != 2 {
		t.Errorf("summary = %+v", resp.Summary)
	}

	stats, err := c.DB.QueueStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Completed != 3 || stats.Pending != 0 {
		t.Errorf("queue stats = %+v", stats)
	}
}

func TestRankerConfig_KeepsDefaults(t *testing.T) {
	rc := RankerConfig(&config.RankerConfig{LazyEncode: true})
	def := ranker.DefaultConfig()
	if rc.DefaultLimit != def.DefaultLimit || rc.MaxLimit != def.MaxLimit || rc.RefreshPriority != def.RefreshPriority {
		t.Errorf("zero values overrode defaults: %+v", rc)
	}
	if !rc.LazyEncode {
		t.Error("LazyEncode not carried")
	}
}

func TestWorkerConfig(t *testing.T) {
	wc := WorkerConfig(&config.QueueConfig{BatchSize: 25, Concurrency: 4, JobsPerSecond: 2.5, JobTimeout: time.Second})
	if wc.BatchSize != 25 || wc.Concurrency != 4 || wc.JobsPerSecond != 2.5 || wc.JobTimeout != time.Second {
		t.Errorf("worker config = %+v", wc)
	}
	if wc.TriggerPriority != models.ManualTriggerPriority {
		t.Errorf("trigger priority = %d", wc.TriggerPriority)
	}
}
