// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

/*
Package services provides suture.Service wrappers for Matchpoint components.

Each wrapper adapts a component lifecycle (ticker loop, Run/Close,
ListenAndServe/Shutdown) to suture's Serve(ctx) and names itself through
fmt.Stringer for supervisor logs.

Available services:

  - QueueProcessorService: runs a queue batch on every tick. A tick that
    finds a batch already running is skipped.
  - StaleRecoveryService: returns jobs stuck in processing to pending, or
    fails them when their attempts are used up.
  - EventRouterService: runs the enqueue event router and closes it, with
    its transport and embedded NATS server, on shutdown.
  - HTTPServerService: runs an http.Server with graceful shutdown.

Return values decide restarts: an error restarts the service, ctx.Err() is
a normal stop and suture.ErrDoNotRestart keeps the service down.
*/
package services
