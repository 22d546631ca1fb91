// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package main

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/matchpoint/internal/ranker"
)

func (c *cli) rankCmd() *cobra.Command {
	var req ranker.Request
	cmd := &cobra.Command{
		Use:   "rank <userID>",
		Short: "Rank upcoming matches for a user",
		Long: `Rank upcoming matches for a user.

A user without a stored vector gets a refresh job and the command fails with
"vector not ready". Run "process" and try again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.UserID = args[0]
			resp, err := c.components.Ranker.Rank(cmd.Context(), req)
			if err != nil {
				return err
			}
			return render(c.out, c.output, resp)
		},
	}
	cmd.Flags().IntVar(&req.Limit, "limit", 0, "page size (0 uses ranker.default_limit)")
	cmd.Flags().IntVar(&req.Offset, "offset", 0, "results to skip")
	cmd.Flags().Float64Var(&req.MinSimilarity, "min", 0, "minimum similarity (0 uses ranker.min_similarity)")
	cmd.Flags().StringSliceVar(&req.MatchIDs, "match", nil, "restrict candidates to these match IDs")
	return cmd
}
