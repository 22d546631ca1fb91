// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package main

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/matchpoint/internal/models"
	"github.com/tomtom215/matchpoint/internal/vector"
)

type encodeResult struct {
	EntityID   string         `json:"entity_id"`
	EntityType string         `json:"entity_type"`
	Summary    vector.Summary `json:"summary"`
	Vector     vector.Vector  `json:"vector,omitempty"`
}

func (c *cli) encodeCmd() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "encode <kind> <id>",
		Short: "Encode an entity without storing the vector",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := models.ParseEntityKind(args[0])
			if err != nil {
				return err
			}
			v, err := c.components.Worker.Encode(cmd.Context(), kind, args[1])
			if err != nil {
				return err
			}
			res := encodeResult{EntityID: args[1], EntityType: string(kind), Summary: v.Summarize()}
			if full {
				res.Vector = v
			}
			return render(c.out, c.output, res)
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "include every vector component")
	return cmd
}
