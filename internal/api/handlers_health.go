// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package api

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// HealthLive reports that the process is serving HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]any{
		"alive":   true,
		"version": h.version,
		"uptime":  time.Since(h.startTime).Seconds(),
	})
}

// ComponentStatus is one readiness check result.
type ComponentStatus struct {
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// HealthReady runs the database ping and registered checks. Any failure
// answers 503.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	components := []ComponentStatus{check(ctx, "database", h.store.Ping)}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		components = append(components, check(ctx, name, h.checks[name]))
	}

	ready := true
	for _, c := range components {
		ready = ready && c.Ready
	}

	data := map[string]any{
		"ready":      ready,
		"components": components,
		"uptime":     time.Since(h.startTime).Seconds(),
	}
	if !ready {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "not ready", data)
		return
	}
	rw.Success(data)
}

func check(ctx context.Context, name string, fn ReadinessCheck) ComponentStatus {
	if err := fn(ctx); err != nil {
		return ComponentStatus{Name: name, Error: err.Error()}
	}
	return ComponentStatus{Name: name, Ready: true}
}
