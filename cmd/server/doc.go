// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

/*
Package main is the Matchpoint server.

The server stores user profiles and matches, keeps their preference vectors
fresh through the embedding queue, and serves ranked match recommendations
over HTTP.

# Application Architecture

	matchpoint
	├── data-layer
	│   ├── queue-processor   QUEUE_AUTO_PROCESS=true
	│   └── stale-recovery    QUEUE_STALE_RECOVERY=true
	├── messaging-layer
	│   └── event-router      gochannel, or JetStream when NATS_ENABLED=true
	└── api-layer
	    └── http-server

Initialization order:

 1. Configuration: koanf (defaults, config.yaml, environment)
 2. Logging: zerolog
 3. Stores: DuckDB, then the vector store (DuckDB or Badger, with breaker
    and LRU cache layers)
 4. Pipeline: encoder, similarity engine, queue worker, ranker
 5. Event router: watermill over the configured transport
 6. HTTP: chi router and middleware
 7. Supervisor tree

# Signal Handling

SIGINT and SIGTERM cancel the root context. The tree stops the HTTP server
(draining for HTTP_SHUTDOWN_TIMEOUT), the event router and the queue
services, then the stores are closed.

# Example

	export DUCKDB_PATH=/var/lib/matchpoint/matchpoint.duckdb
	export QUEUE_INTERVAL=15s
	export NATS_ENABLED=true NATS_EMBEDDED=true
	./matchpoint-server
*/
package main
