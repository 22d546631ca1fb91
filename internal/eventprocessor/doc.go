// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

/*
Package eventprocessor carries embedding enqueue requests as messages.

Producers publish EnqueueRequest payloads to a topic (embeddings.enqueue by
default). A watermill router consumes them and calls the queue's Enqueue,
so a burst of record changes becomes deduplicated queue jobs.

Two transports are supported:

  - gochannel: in-process, used when NATS is disabled
  - NATS JetStream: durable, optionally served by an embedded nats-server

Router middleware, outermost first:

	Recoverer -> PoisonQueue -> Retry -> handler

Payloads that fail to decode or validate are published to the poison topic
immediately. Enqueue failures are retried with exponential backoff and
poisoned once retries run out.
*/
package eventprocessor
