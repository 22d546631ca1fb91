// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package services

import (
	"context"
	"fmt"

	"github.com/thejerf/suture/v4"
)

// EventRouter is the enqueue event router lifecycle. Satisfied by
// *eventprocessor.Processor.
type EventRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// EventRouterService runs the enqueue event router.
//
// A watermill router cannot run again once closed, so the service never
// asks to be restarted. The readiness probe reports the router as down
// instead.
type EventRouterService struct {
	router EventRouter
}

// NewEventRouterService wraps router.
func NewEventRouterService(router EventRouter) *EventRouterService {
	return &EventRouterService{router: router}
}

// Serve implements suture.Service.
func (s *EventRouterService) Serve(ctx context.Context) error {
	runErr := s.router.Run(ctx)
	closeErr := s.router.Close()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if runErr != nil {
		return fmt.Errorf("%w: %w", suture.ErrDoNotRestart, runErr)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: %w", suture.ErrDoNotRestart, closeErr)
	}
	return suture.ErrDoNotRestart
}

// String implements fmt.Stringer.
func (s *EventRouterService) String() string {
	return "event-router"
}
