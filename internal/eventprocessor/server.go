// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package eventprocessor

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

// EmbeddedServer is an in-process NATS server with JetStream enabled.
type EmbeddedServer struct {
	server    *server.Server
	clientURL string
}

// ServerOptions configures the embedded server. Port -1 picks a free port.
type ServerOptions struct {
	Host     string
	Port     int
	StoreDir string
}

// ServerOptionsFromURL derives listen options from a nats:// URL.
func ServerOptionsFromURL(rawURL, storeDir string) (ServerOptions, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ServerOptions{}, fmt.Errorf("parse NATS URL: %w", err)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		return ServerOptions{Host: u.Host, Port: 4222, StoreDir: storeDir}, nil //nolint:nilerr // URL without port uses the default
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return ServerOptions{}, fmt.Errorf("invalid NATS port %q: %w", portStr, err)
	}
	return ServerOptions{Host: host, Port: port, StoreDir: storeDir}, nil
}

// NewEmbeddedServer starts the server and waits until it accepts clients.
func NewEmbeddedServer(opts ServerOptions) (*EmbeddedServer, error) {
	ns, err := server.NewServer(&server.Options{
		ServerName: "matchpoint",
		Host:       opts.Host,
		Port:       opts.Port,
		JetStream:  true,
		StoreDir:   opts.StoreDir,
		NoLog:      true,
		NoSigs:     true,
		MaxPayload: 1024 * 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(30 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("NATS server not ready within timeout")
	}

	return &EmbeddedServer{server: ns, clientURL: ns.ClientURL()}, nil
}

// ClientURL returns the URL clients connect to.
func (s *EmbeddedServer) ClientURL() string {
	return s.clientURL
}

// Shutdown stops the server and waits for it unless ctx ends first.
func (s *EmbeddedServer) Shutdown(ctx context.Context) error {
	s.server.Shutdown()
	done := make(chan struct{})
	go func() {
		s.server.WaitForShutdown()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// IsRunning reports whether the server is running.
func (s *EmbeddedServer) IsRunning() bool {
	return s.server.Running()
}
