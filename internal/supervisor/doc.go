// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

/*
Package supervisor provides suture-based process supervision for Matchpoint.

# Tree

	matchpoint (root)
	├── data-layer
	│   ├── queue-processor     (queue.auto_process)
	│   └── stale-recovery      (queue.stale_recovery)
	├── messaging-layer
	│   └── event-router        (watermill router, gochannel or JetStream,
	│                            optional embedded NATS server)
	└── api-layer
	    └── http-server

Supervisor events are logged through sutureslog over the zerolog slog
adapter.

# Usage

	tree, _ := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewQueueProcessorService(worker, cfg, logger))
	tree.AddMessagingService(services.NewEventRouterService(processor))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	err := tree.Serve(ctx)

# Failure Handling

Each layer restarts its own failed children. A failure counter decays over
FailureDecay seconds; past FailureThreshold the layer waits FailureBackoff
before the next restart. A service returning suture.ErrDoNotRestart stays
stopped.

DuckDB and Badger are not supervised. They are embedded libraries opened
once by cmd/server and closed after the tree stops.

# Debugging Shutdown Issues

	report, _ := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    logging.Warn().Str("service", svc.Name).Msg("Service did not stop")
	}
*/
package supervisor
