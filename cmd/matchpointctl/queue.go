// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/matchpoint/internal/database"
	"github.com/tomtom215/matchpoint/internal/eventprocessor"
	"github.com/tomtom215/matchpoint/internal/logging"
	"github.com/tomtom215/matchpoint/internal/models"
	"github.com/tomtom215/matchpoint/internal/queue"
	"github.com/tomtom215/matchpoint/internal/validation"
)

// publishSource tags events published from the command line.
const publishSource = "matchpointctl"

type enqueueResult struct {
	Job     *models.EmbeddingJob `json:"job,omitempty"`
	Created bool                 `json:"created"`
	EventID string               `json:"event_id,omitempty"`
	Topic   string               `json:"topic,omitempty"`
}

func (c *cli) enqueueCmd() *cobra.Command {
	var (
		priority    int
		maxAttempts int
		publish     bool
	)
	cmd := &cobra.Command{
		Use:   "enqueue <kind> <id>",
		Short: "Schedule a vector refresh for a user or match",
		Long: `Schedule a vector refresh for a user or match.

An entity with a pending job keeps that job; its priority is raised when the
new request is higher. An entity whose job is already processing gets a new
pending job behind it. With --publish the request goes through the event
router over NATS instead of being written directly.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := models.EnqueueRequest{
				EntityType:  args[0],
				EntityID:    args[1],
				Priority:    priority,
				MaxAttempts: maxAttempts,
			}
			if verr := validation.ValidateStruct(&req); verr != nil {
				return verr
			}
			kind, err := models.ParseEntityKind(req.EntityType)
			if err != nil {
				return err
			}
			req.EntityType = string(kind)

			if publish {
				return c.publishEnqueue(cmd, req)
			}

			job, created, err := c.components.DB.Enqueue(cmd.Context(), database.EnqueueParams{
				EntityID:    req.EntityID,
				Kind:        kind,
				Priority:    req.Priority,
				MaxAttempts: req.MaxAttempts,
			})
			if err != nil {
				return fmt.Errorf("enqueue %s %s: %w", kind, req.EntityID, err)
			}
			return render(c.out, c.output, enqueueResult{Job: job, Created: created})
		},
	}
	cmd.Flags().IntVar(&priority, "priority", 0, "job priority (0-100, higher runs first)")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "attempts before the job fails (0 uses queue.max_attempts)")
	cmd.Flags().BoolVar(&publish, "publish", false, "publish the request to NATS instead of writing the queue")
	return cmd
}

func (c *cli) publishEnqueue(cmd *cobra.Command, req models.EnqueueRequest) error {
	if !c.cfg.NATS.Enabled {
		return errors.New("--publish requires NATS_ENABLED=true")
	}
	ctx := cmd.Context()
	transport, err := eventprocessor.NewNATSTransport(ctx, &c.cfg.NATS, c.cfg.NATS.URL, logging.NewWatermillAdapter(c.logger))
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer func() { _ = transport.Close() }()

	pub := eventprocessor.NewPublisher(transport.Publisher, c.cfg.NATS.Topic, transport.Name)
	id, err := pub.PublishEnqueue(ctx, req, publishSource)
	if err != nil {
		return err
	}
	return render(c.out, c.output, enqueueResult{EventID: id, Topic: pub.Topic()})
}

func (c *cli) processCmd() *cobra.Command {
	var opts queue.Options
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process one batch of pending embedding jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.BatchSize <= 0 {
				opts.BatchSize = c.cfg.Queue.BatchSize
			}
			if opts.Concurrency <= 0 {
				opts.Concurrency = c.cfg.Queue.Concurrency
			}
			result, err := c.components.Worker.TryProcessBatch(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return render(c.out, c.output, result)
		},
	}
	cmd.Flags().IntVar(&opts.BatchSize, "batch", 0, "maximum jobs to claim (0 uses queue.batch_size)")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "parallel encodes (0 uses queue.concurrency)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "encode without claiming jobs or writing vectors")
	return cmd
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue counts by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := c.components.DB.QueueStats(cmd.Context())
			if err != nil {
				return err
			}
			return render(c.out, c.output, stats)
		},
	}
}
