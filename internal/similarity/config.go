// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package similarity

import (
	"fmt"
	"sort"

	"github.com/tomtom215/matchpoint/internal/vector"
)

// Block is a contiguous range of dimensions scored as one attribute.
type Block struct {
	// Name identifies the block in breakdowns.
	Name string

	// Start and End bound the block, half-open [Start, End).
	Start int
	End   int

	// Weight is the block's share of the final score.
	Weight float64
}

// Thresholds are the minimum scores for each tier.
type Thresholds struct {
	Perfect   float64
	Excellent float64
	Good      float64
}

// Config holds similarity engine settings.
type Config struct {
	// Dimension is the required vector length.
	Dimension int

	// Blocks partition the vector. Dimensions outside every block are ignored.
	Blocks []Block

	// NeutralScore is used for a block where exactly one side is all zero.
	NeutralScore float64

	Thresholds Thresholds
}

// Block names used by the default configuration.
const (
	BlockSport       = "sport"
	BlockAffiliation = "affiliation"
	BlockProficiency = "proficiency"
	BlockEnhanced    = "enhanced"
	BlockResidual    = "residual"
)

// DefaultConfig returns the calibrated production weights.
//
// The enhanced block spans schedule and gender; the residual block spans
// play style and the venue/age dimensions.
func DefaultConfig() *Config {
	return &Config{
		Dimension: vector.Dimension,
		Blocks: []Block{
			{Name: BlockSport, Start: vector.SportStart, End: vector.SportEnd, Weight: 0.35},
			{Name: BlockAffiliation, Start: vector.AffiliationStart, End: vector.AffiliationEnd, Weight: 0.25},
			{Name: BlockProficiency, Start: vector.ProficiencyStart, End: vector.ProficiencyEnd, Weight: 0.20},
			{Name: BlockEnhanced, Start: vector.ScheduleStart, End: vector.SecondaryStart + 2, Weight: 0.15},
			{Name: BlockResidual, Start: vector.SecondaryStart + 2, End: vector.SecondaryEnd, Weight: 0.05},
		},
		NeutralScore: 0.5,
		Thresholds: Thresholds{
			Perfect:   0.90,
			Excellent: 0.75,
			Good:      0.60,
		},
	}
}

// Validate checks the configuration.
//
//nolint:gocyclo // sequential checks over every block
func (c *Config) Validate() error {
	if c.Dimension <= 0 {
		return fmt.Errorf("similarity.dimension must be positive, got %d", c.Dimension)
	}
	if len(c.Blocks) == 0 {
		return fmt.Errorf("similarity.blocks must not be empty")
	}

	sorted := make([]Block, len(c.Blocks))
	copy(sorted, c.Blocks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var total float64
	names := make(map[string]bool, len(sorted))
	for i, b := range sorted {
		if b.Name == "" {
			return fmt.Errorf("similarity.blocks[%d] must have a name", i)
		}
		if names[b.Name] {
			return fmt.Errorf("similarity.blocks %q is defined twice", b.Name)
		}
		names[b.Name] = true
		if b.Start < 0 || b.End > c.Dimension || b.Start >= b.End {
			return fmt.Errorf("similarity.blocks.%s range [%d,%d) invalid for dimension %d", b.Name, b.Start, b.End, c.Dimension)
		}
		if i > 0 && b.Start < sorted[i-1].End {
			return fmt.Errorf("similarity.blocks.%s overlaps %s", b.Name, sorted[i-1].Name)
		}
		if b.Weight < 0 {
			return fmt.Errorf("similarity.blocks.%s.weight must be non-negative, got %f", b.Name, b.Weight)
		}
		total += b.Weight
	}
	if total <= 0 {
		return fmt.Errorf("similarity block weights must sum to a positive value, got %f", total)
	}

	if c.NeutralScore < 0 || c.NeutralScore > 1 {
		return fmt.Errorf("similarity.neutral_score must be in [0,1], got %f", c.NeutralScore)
	}

	t := c.Thresholds
	if t.Good <= 0 || t.Good > t.Excellent || t.Excellent > t.Perfect || t.Perfect > 1 {
		return fmt.Errorf("similarity.thresholds must satisfy 0 < good <= excellent <= perfect <= 1, got %f/%f/%f",
			t.Good, t.Excellent, t.Perfect)
	}
	return nil
}

// Normalize rescales block weights to sum to 1.
func (c *Config) Normalize() {
	var total float64
	for _, b := range c.Blocks {
		total += b.Weight
	}
	if total <= 0 {
		return
	}
	for i := range c.Blocks {
		c.Blocks[i].Weight /= total
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Blocks = make([]Block, len(c.Blocks))
	copy(out.Blocks, c.Blocks)
	return &out
}

// SetWeight changes the weight of the named block.
func (c *Config) SetWeight(name string, weight float64) error {
	for i := range c.Blocks {
		if c.Blocks[i].Name == name {
			c.Blocks[i].Weight = weight
			return nil
		}
	}
	return fmt.Errorf("similarity: unknown block %q", name)
}
