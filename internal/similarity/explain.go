// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package similarity

import (
	"fmt"
	"sort"
	"strings"
)

// blockPhrases describe a strong block in plain words.
var blockPhrases = map[string]string{
	BlockSport:       "same sport",
	BlockAffiliation: "same faculty",
	BlockProficiency: "matching skill level",
	BlockEnhanced:    "fits your schedule",
	BlockResidual:    "suits your play style",
}

// strongBlockScore is the block score above which a block is called out.
const strongBlockScore = 0.8

// Explain returns a sentence describing r. The opening phrase follows the
// tier and carries the percentage; higher tiers also name the blocks that
// drove the score.
func Explain(r Result) string {
	pct := r.Percentage()

	var b strings.Builder
	switch r.Tier {
	case TierPerfect:
		fmt.Fprintf(&b, "Perfect match! %d%% compatibility", pct)
	case TierExcellent:
		fmt.Fprintf(&b, "Excellent match! %d%% compatibility", pct)
	case TierGood:
		fmt.Fprintf(&b, "Good match! %d%% compatibility", pct)
	default:
		fmt.Fprintf(&b, "Moderate match. %d%% compatibility", pct)
		return b.String()
	}

	if reasons := strongBlocks(r, topReasons(r.Tier)); len(reasons) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(reasons, ", "))
	}
	return b.String()
}

func topReasons(t Tier) int {
	switch t {
	case TierPerfect:
		return 3
	case TierExcellent:
		return 2
	default:
		return 1
	}
}

// strongBlocks returns phrases for the highest-weighted blocks that scored
// above strongBlockScore, at most n of them.
func strongBlocks(r Result, n int) []string {
	type cand struct {
		phrase string
		weight float64
	}
	var cands []cand
	for _, bs := range r.Blocks {
		if bs.Skipped || bs.Neutral || bs.Score < strongBlockScore {
			continue
		}
		if p, ok := blockPhrases[bs.Name]; ok {
			cands = append(cands, cand{p, bs.Weight})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].weight > cands[j].weight })

	if len(cands) > n {
		cands = cands[:n]
	}
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.phrase
	}
	return out
}
