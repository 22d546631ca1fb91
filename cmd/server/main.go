// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/matchpoint/internal/api"
	"github.com/tomtom215/matchpoint/internal/app"
	"github.com/tomtom215/matchpoint/internal/config"
	"github.com/tomtom215/matchpoint/internal/eventprocessor"
	"github.com/tomtom215/matchpoint/internal/logging"
	"github.com/tomtom215/matchpoint/internal/metrics"
	"github.com/tomtom215/matchpoint/internal/queue"
	"github.com/tomtom215/matchpoint/internal/supervisor"
	"github.com/tomtom215/matchpoint/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Matchpoint stopped with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	logger := logging.Logger()
	logger.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("vector_backend", cfg.Vectors.Backend).
		Bool("nats", cfg.NATS.Enabled).
		Msg("Starting Matchpoint")
	metrics.RecordAppInfo(version)

	components, err := app.Build(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}
	defer func() {
		if err := components.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing stores")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	processor, err := eventprocessor.New(ctx, &cfg.NATS, components.DB, logger)
	if err != nil {
		return fmt.Errorf("initialize event router: %w", err)
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	// Data layer
	if cfg.Queue.AutoProcess {
		tree.AddDataService(services.NewQueueProcessorService(components.Worker, services.QueueProcessorConfig{
			Interval:   cfg.Queue.Interval,
			RunOnStart: true,
			Options:    queue.Options{BatchSize: cfg.Queue.BatchSize, Concurrency: cfg.Queue.Concurrency},
		}, logger))
	} else {
		logger.Info().Msg("Queue auto-processing disabled (QUEUE_AUTO_PROCESS=false)")
	}
	if cfg.Queue.StaleRecovery {
		tree.AddDataService(services.NewStaleRecoveryService(components.DB, cfg.Queue.StaleAfter, cfg.Queue.StaleInterval, logger))
	}

	// Messaging layer
	tree.AddMessagingService(services.NewEventRouterService(processor))

	// API layer
	handler := api.NewHandler(components.DB, components.Worker, components.Ranker, version, map[string]api.ReadinessCheck{
		"event_router": func(context.Context) error {
			if !processor.IsRunning() {
				return errors.New("event router is not running")
			}
			return nil
		},
	})
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security))),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logger.Info().Str("addr", server.Addr).Str("transport", processor.Transport()).Msg("Services added to supervisor tree")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	serveErr := <-tree.ServeBackground(ctx)
	if errors.Is(serveErr, context.Canceled) {
		serveErr = nil
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}
	return serveErr
}
