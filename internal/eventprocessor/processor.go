// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/matchpoint/internal/config"
	"github.com/tomtom215/matchpoint/internal/logging"
)

// HandlerName is the router handler consuming enqueue events.
const HandlerName = "embedding_enqueue"

// Processor owns the transport, router and publisher for enqueue events.
type Processor struct {
	cfg       config.NATSConfig
	transport *Transport
	server    *EmbeddedServer
	router    *message.Router
	publisher *Publisher
	logger    zerolog.Logger
}

// New builds a processor. With NATS disabled, events travel over an
// in-process channel; otherwise over JetStream, optionally through an
// embedded server.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(ctx context.Context, cfg *config.NATSConfig, jobs Enqueuer, logger zerolog.Logger) (*Processor, error) {
	logger = logger.With().Str("component", "eventprocessor").Logger()
	wmLogger := logging.NewWatermillAdapter(logger)

	p := &Processor{cfg: *cfg, logger: logger}

	if !cfg.Enabled {
		p.transport = NewGoChannelTransport(wmLogger)
	} else {
		url := cfg.URL
		if cfg.EmbeddedServer {
			opts, err := ServerOptionsFromURL(cfg.URL, cfg.StoreDir)
			if err != nil {
				return nil, err
			}
			srv, err := NewEmbeddedServer(opts)
			if err != nil {
				return nil, err
			}
			p.server = srv
			url = srv.ClientURL()
			logger.Info().Str("url", url).Msg("Embedded NATS server started")
		}
		t, err := NewNATSTransport(ctx, cfg, url, wmLogger)
		if err != nil {
			p.shutdownServer()
			return nil, err
		}
		p.transport = t
	}

	rcfg := DefaultRouterConfig()
	rcfg.PoisonQueueTopic = cfg.PoisonTopic
	if cfg.RouterRetryCount >= 0 {
		rcfg.RetryMaxRetries = cfg.RouterRetryCount
	}
	if cfg.RouterRetryInitialInterval > 0 {
		rcfg.RetryInitialInterval = cfg.RouterRetryInitialInterval
	}
	if cfg.RouterCloseTimeout > 0 {
		rcfg.CloseTimeout = cfg.RouterCloseTimeout
	}

	router, err := newRouter(rcfg, p.transport.Publisher, wmLogger)
	if err != nil {
		_ = p.closeTransport()
		return nil, err
	}
	p.router = router

	handler := NewEnqueueHandler(jobs, p.transport.Publisher, cfg.PoisonTopic, logger)
	router.AddConsumerHandler(HandlerName, cfg.Topic, p.transport.Subscriber, handler.Handle)

	p.publisher = NewPublisher(p.transport.Publisher, cfg.Topic, p.transport.Name)
	return p, nil
}

// Publisher returns the enqueue event publisher.
func (p *Processor) Publisher() *Publisher {
	return p.publisher
}

// Transport returns the transport name.
func (p *Processor) Transport() string {
	return p.transport.Name
}

// Run runs the router until ctx is cancelled or Close is called.
func (p *Processor) Run(ctx context.Context) error {
	p.logger.Info().Str("transport", p.transport.Name).Str("topic", p.cfg.Topic).Msg("Event router starting")
	if err := p.router.Run(ctx); err != nil {
		return fmt.Errorf("event router: %w", err)
	}
	return nil
}

// Running is closed once the router's handlers are subscribed.
func (p *Processor) Running() chan struct{} {
	return p.router.Running()
}

// IsRunning reports whether the router is running.
func (p *Processor) IsRunning() bool {
	return p.router.IsRunning()
}

// Close stops the router, then the transport and embedded server.
func (p *Processor) Close() error {
	p.publisher.Close()
	var errs []error
	if err := p.router.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close router: %w", err))
	}
	if err := p.closeTransport(); err != nil {
		errs = append(errs, err)
	}
	p.shutdownServer()
	return errors.Join(errs...)
}

func (p *Processor) closeTransport() error {
	if err := p.transport.Close(); err != nil {
		return fmt.Errorf("close %s transport: %w", p.transport.Name, err)
	}
	return nil
}

func (p *Processor) shutdownServer() {
	if p.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.server.Shutdown(ctx); err != nil {
		p.logger.Warn().Err(err).Msg("Embedded NATS server shutdown timed out")
	}
}
