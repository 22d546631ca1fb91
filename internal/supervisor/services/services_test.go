// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/matchpoint/internal/queue"
)

var (
	_ suture.Service = (*HTTPServerService)(nil)
	_ suture.Service = (*QueueProcessorService)(nil)
	_ suture.Service = (*StaleRecoveryService)(nil)
	_ suture.Service = (*EventRouterService)(nil)
)

func runService(t *testing.T, svc suture.Service) (cancel func() error) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()
	return func() error {
		stop()
		select {
		case err := <-errCh:
			return err
		case <-time.After(2 * time.Second):
			t.Fatal("service did not stop")
			return nil
		}
	}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// HTTP server

type fakeHTTPServer struct {
	listenErr   error
	shutdownErr error
	started     chan struct{}
	stop        chan struct{}
	shutdowns   atomic.Int32
}

func newFakeHTTPServer() *fakeHTTPServer {
	return &fakeHTTPServer{started: make(chan struct{}, 1), stop: make(chan struct{})}
}

func (s *fakeHTTPServer) ListenAndServe() error {
	s.started <- struct{}{}
	if s.listenErr != nil {
		return s.listenErr
	}
	<-s.stop
	return http.ErrServerClosed
}

func (s *fakeHTTPServer) Shutdown(context.Context) error {
	s.shutdowns.Add(1)
	close(s.stop)
	return s.shutdownErr
}

func TestHTTPServerService_GracefulShutdown(t *testing.T) {
	srv := newFakeHTTPServer()
	stop := runService(t, NewHTTPServerService(srv, time.Second))
	<-srv.started

	if err := stop(); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v, want context.Canceled", err)
	}
	if srv.shutdowns.Load() != 1 {
		t.Errorf("shutdowns = %d", srv.shutdowns.Load())
	}
}

func TestHTTPServerService_ListenFailure(t *testing.T) {
	srv := newFakeHTTPServer()
	srv.listenErr = errors.New("bind: address already in use")
	err := NewHTTPServerService(srv, time.Second).Serve(context.Background())
	if !errors.Is(err, srv.listenErr) {
		t.Errorf("Serve = %v", err)
	}
}

func TestHTTPServerService_ShutdownFailure(t *testing.T) {
	srv := newFakeHTTPServer()
	srv.shutdownErr = errors.New("drain timeout")
	stop := runService(t, NewHTTPServerService(srv, time.Second))
	<-srv.started
	if err := stop(); !errors.Is(err, srv.shutdownErr) {
		t.Errorf("Serve = %v", err)
	}
}

func TestNewHTTPServerService_DefaultTimeout(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second} {
		if got := NewHTTPServerService(newFakeHTTPServer(), d).shutdownTimeout; got != 10*time.Second {
			t.Errorf("timeout(%v) = %v", d, got)
		}
	}
}

// Queue processor

type fakeRunner struct {
	mu    sync.Mutex
	calls int
	opts  queue.Options
	err   error
}

func (r *fakeRunner) TryProcessBatch(_ context.Context, opts queue.Options) (*queue.BatchResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.opts = opts
	if r.err != nil {
		return nil, r.err
	}
	return &queue.BatchResult{Processed: 1, Jobs: []queue.JobResult{{JobID: "j1", Outcome: queue.OutcomeCompleted}}}, nil
}

func (r *fakeRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestQueueProcessorService_Ticks(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewQueueProcessorService(runner, QueueProcessorConfig{
		Interval: 10 * time.Millisecond,
		Options:  queue.Options{BatchSize: 7},
	}, zerolog.Nop())

	stop := runService(t, svc)
	eventually(t, func() bool { return runner.count() >= 2 })
	if err := stop(); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v", err)
	}
	if runner.opts.BatchSize != 7 {
		t.Errorf("options = %+v", runner.opts)
	}
}

func TestQueueProcessorService_SurvivesOverlapAndErrors(t *testing.T) {
	for _, err := range []error{queue.ErrAlreadyProcessing, errors.New("database is locked")} {
		runner := &fakeRunner{err: err}
		stop := runService(t, NewQueueProcessorService(runner, QueueProcessorConfig{Interval: 5 * time.Millisecond}, zerolog.Nop()))
		eventually(t, func() bool { return runner.count() >= 3 })
		if got := stop(); !errors.Is(got, context.Canceled) {
			t.Errorf("%v: Serve = %v", err, got)
		}
	}
}

func TestQueueProcessorService_RunOnStart(t *testing.T) {
	runner := &fakeRunner{}
	stop := runService(t, NewQueueProcessorService(runner, QueueProcessorConfig{Interval: time.Hour, RunOnStart: true}, zerolog.Nop()))
	eventually(t, func() bool { return runner.count() == 1 })
	_ = stop()
}

// Stale recovery

type fakeResetter struct {
	mu      sync.Mutex
	cutoffs []time.Time
}

func (f *fakeResetter) ResetStaleJobs(_ context.Context, cutoff time.Time) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	return 2, 1, nil
}

func (f *fakeResetter) first() (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.cutoffs) == 0 {
		return time.Time{}, false
	}
	return f.cutoffs[0], true
}

func TestStaleRecoveryService_UsesCutoff(t *testing.T) {
	jobs := &fakeResetter{}
	svc := NewStaleRecoveryService(jobs, 5*time.Minute, 10*time.Millisecond, zerolog.Nop())
	fixed := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	stop := runService(t, svc)
	eventually(t, func() bool { _, ok := jobs.first(); return ok })
	_ = stop()

	cutoff, _ := jobs.first()
	if want := fixed.Add(-5 * time.Minute); !cutoff.Equal(want) {
		t.Errorf("cutoff = %v, want %v", cutoff, want)
	}
}

func TestNewStaleRecoveryService_Defaults(t *testing.T) {
	svc := NewStaleRecoveryService(&fakeResetter{}, 0, 0, zerolog.Nop())
	if svc.after != 10*time.Minute || svc.interval != time.Minute {
		t.Errorf("after = %v, interval = %v", svc.after, svc.interval)
	}
}

// Event router

type fakeRouter struct {
	runErr    error
	exitEarly bool
	closed    atomic.Int32
}

func (r *fakeRouter) Run(ctx context.Context) error {
	if r.exitEarly {
		return r.runErr
	}
	<-ctx.Done()
	return nil
}

func (r *fakeRouter) Close() error {
	r.closed.Add(1)
	return nil
}

func TestEventRouterService_StopsAndCloses(t *testing.T) {
	router := &fakeRouter{}
	stop := runService(t, NewEventRouterService(router))
	time.Sleep(10 * time.Millisecond)
	if err := stop(); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v", err)
	}
	if router.closed.Load() != 1 {
		t.Errorf("closed %d times", router.closed.Load())
	}
}

func TestEventRouterService_FailureIsNotRestarted(t *testing.T) {
	router := &fakeRouter{exitEarly: true, runErr: errors.New("subscribe: no responders")}
	err := NewEventRouterService(router).Serve(context.Background())
	if !errors.Is(err, suture.ErrDoNotRestart) || !errors.Is(err, router.runErr) {
		t.Errorf("Serve = %v", err)
	}
	if router.closed.Load() != 1 {
		t.Error("router not closed after failure")
	}
}
