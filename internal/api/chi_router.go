// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/matchpoint/internal/middleware"
)

// NewRouter builds the HTTP routes.
func NewRouter(h *Handler, mw *ChiMiddleware) http.Handler {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(mw.RateLimitCustom("health", RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimitCustom("records", RateLimitWrite))
			r.Put("/profiles/{id}", h.PutProfile)
			r.Put("/matches/{id}", h.PutMatch)
			r.Post("/matches/{id}/participants", h.AddParticipant)
		})

		r.Route("/embeddings", func(r chi.Router) {
			r.Use(mw.RateLimit("embeddings"))
			r.Post("/queue", h.Enqueue)
			r.Get("/queue/status", h.QueueStatus)
			r.Get("/queue/jobs", h.ListJobs)
			r.Get("/queue/jobs/{jobID}", h.GetJob)
			r.With(mw.RateLimitCustom("queue_process", RateLimitQueue)).Post("/queue/process", h.ProcessQueue)
			r.With(mw.RateLimitCustom("queue_trigger", RateLimitQueue)).Post("/trigger", h.Trigger)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit("recommendations"))
			r.Post("/recommendations", h.Recommendations)
			r.Get("/users/{userID}/recommendations", h.UserRecommendations)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
