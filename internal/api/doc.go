// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

/*
Package api provides the HTTP surface of the recommendation pipeline.

Routes (all JSON, wrapped in APIResponse):

	GET  /api/v1/health/live
	GET  /api/v1/health/ready
	PUT  /api/v1/profiles/{id}                 store profile, queue user and hosted matches
	PUT  /api/v1/matches/{id}                  store match, queue match
	POST /api/v1/matches/{id}/participants     record a join
	POST /api/v1/embeddings/queue              enqueue (201 created, 200 merged)
	GET  /api/v1/embeddings/queue/status
	GET  /api/v1/embeddings/queue/jobs
	GET  /api/v1/embeddings/queue/jobs/{jobID}
	POST /api/v1/embeddings/queue/process      run one batch (409 while one runs)
	POST /api/v1/embeddings/trigger            encode one entity now
	POST /api/v1/recommendations
	GET  /api/v1/users/{userID}/recommendations
	GET  /metrics

Ranking errors map to 409 VECTOR_NOT_READY, 404 USER_NOT_FOUND and 400
VALIDATION_ERROR. Every route group is rate limited per client IP with
httprate.
*/
package api
