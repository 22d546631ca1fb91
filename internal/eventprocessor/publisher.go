// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/matchpoint/internal/logging"
	"github.com/tomtom215/matchpoint/internal/metrics"
	"github.com/tomtom215/matchpoint/internal/models"
	"github.com/tomtom215/matchpoint/internal/validation"
)

// Message metadata keys.
const (
	MetadataSource       = "source"
	MetadataPublishedAt  = "published_at"
	MetadataOriginalUUID = "original_uuid"
	// MetadataCorrelationID carries the publisher's correlation ID to the
	// consumer's log lines.
	MetadataCorrelationID = "correlation_id"
)

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// Publisher sends enqueue events to the configured topic.
type Publisher struct {
	pub       message.Publisher
	topic     string
	transport string

	mu     sync.RWMutex
	closed bool
}

// NewPublisher wraps a watermill publisher. transport labels the publish
// metric ("nats" or "gochannel").
func NewPublisher(pub message.Publisher, topic, transport string) *Publisher {
	return &Publisher{pub: pub, topic: topic, transport: transport}
}

// PublishEnqueue validates req and publishes it. source and the correlation
// ID of ctx (a fresh one if ctx has none) are recorded in message metadata.
func (p *Publisher) PublishEnqueue(ctx context.Context, req models.EnqueueRequest, source string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return "", ErrPublisherClosed
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidEvent, verr.Error())
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal enqueue event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if source != "" {
		msg.Metadata.Set(MetadataSource, source)
	}
	msg.Metadata.Set(MetadataPublishedAt, time.Now().UTC().Format(time.RFC3339Nano))
	correlationID := logging.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = logging.GenerateCorrelationID()
	}
	msg.Metadata.Set(MetadataCorrelationID, correlationID)

	if err := p.pub.Publish(p.topic, msg); err != nil {
		return "", fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	metrics.EventsPublished.WithLabelValues(p.transport).Inc()
	return msg.UUID, nil
}

// Topic returns the topic events are published to.
func (p *Publisher) Topic() string {
	return p.topic
}

// Close stops further publishing. The underlying publisher is owned by the
// transport and closed there.
func (p *Publisher) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}
