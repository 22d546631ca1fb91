// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package eventprocessor

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/matchpoint/internal/database"
	"github.com/tomtom215/matchpoint/internal/logging"
	"github.com/tomtom215/matchpoint/internal/metrics"
	"github.com/tomtom215/matchpoint/internal/models"
	"github.com/tomtom215/matchpoint/internal/validation"
)

// ErrInvalidEvent is returned for payloads that can never be enqueued.
var ErrInvalidEvent = errors.New("invalid enqueue event")

// Enqueuer adds embedding jobs.
type Enqueuer interface {
	Enqueue(ctx context.Context, p database.EnqueueParams) (*models.EmbeddingJob, bool, error)
}

// DecodeEnqueue parses and validates an enqueue event payload.
func DecodeEnqueue(payload []byte) (models.EnqueueRequest, error) {
	var req models.EnqueueRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return req, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		return req, fmt.Errorf("%w: %s", ErrInvalidEvent, verr.Error())
	}
	return req, nil
}

// EnqueueHandler turns enqueue events into queue jobs. Invalid payloads go
// straight to the poison topic; enqueue failures are returned so the router
// retries them.
type EnqueueHandler struct {
	jobs        Enqueuer
	poisonPub   message.Publisher
	poisonTopic string
	logger      zerolog.Logger
}

// NewEnqueueHandler creates a handler. poisonPub may be nil, in which case
// invalid events are dropped after logging.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEnqueueHandler(jobs Enqueuer, poisonPub message.Publisher, poisonTopic string, logger zerolog.Logger) *EnqueueHandler {
	return &EnqueueHandler{
		jobs:        jobs,
		poisonPub:   poisonPub,
		poisonTopic: poisonTopic,
		logger:      logger.With().Str("component", "enqueue_handler").Logger(),
	}
}

// Handle is a watermill consumer handler.
func (h *EnqueueHandler) Handle(msg *message.Message) error {
	ctx := h.messageContext(msg)
	req, err := DecodeEnqueue(msg.Payload)
	if err != nil {
		metrics.EventsConsumed.WithLabelValues("invalid").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Rejecting enqueue event")
		return h.poison(msg, err)
	}

	kind, err := models.ParseEntityKind(req.EntityType)
	if err != nil {
		// Unreachable after validation; treated as invalid all the same.
		metrics.EventsConsumed.WithLabelValues("invalid").Inc()
		return h.poison(msg, err)
	}

	job, created, err := h.jobs.Enqueue(ctx, database.EnqueueParams{
		EntityID:    req.EntityID,
		Kind:        kind,
		Priority:    req.Priority,
		MaxAttempts: req.MaxAttempts,
	})
	if err != nil {
		metrics.EventsConsumed.WithLabelValues("error").Inc()
		return fmt.Errorf("enqueue %s %s: %w", kind, req.EntityID, err)
	}

	metrics.EventsConsumed.WithLabelValues("ok").Inc()
	logging.Ctx(ctx).Debug().
		Str("job_id", job.ID).
		Str("entity_id", req.EntityID).
		Str("entity_type", string(kind)).
		Bool("created", created).
		Str("source", msg.Metadata.Get(MetadataSource)).
		Msg("Enqueued from event")
	return nil
}

// messageContext carries the handler logger and the event's correlation ID.
// Events without one, such as those from older publishers, get a new ID.
func (h *EnqueueHandler) messageContext(msg *message.Message) context.Context {
	id := msg.Metadata.Get(MetadataCorrelationID)
	if id == "" {
		id = logging.GenerateCorrelationID()
	}
	ctx := logging.ContextWithCorrelationID(msg.Context(), id)
	return logging.ContextWithLogger(ctx, h.logger)
}

func (h *EnqueueHandler) poison(msg *message.Message, cause error) error {
	if h.poisonPub == nil || h.poisonTopic == "" {
		return nil
	}
	out := message.NewMessage(watermill.NewUUID(), msg.Payload)
	for k, v := range msg.Metadata {
		out.Metadata.Set(k, v)
	}
	out.Metadata.Set(middleware.ReasonForPoisonedKey, cause.Error())
	out.Metadata.Set(MetadataOriginalUUID, msg.UUID)
	if err := h.poisonPub.Publish(h.poisonTopic, out); err != nil {
		return fmt.Errorf("publish to poison topic: %w", err)
	}
	return nil
}
