// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package vector

import (
	"fmt"
	"time"
)

// Config holds encoder settings.
type Config struct {
	// Layout assigns attributes to dimensions.
	Layout Layout

	// SportDecay is subtracted per dimension inside an active sport range,
	// so dimension i of the range holds 1 - i*SportDecay.
	SportDecay float64

	// SkillStrengths is the value written to a user's proficiency dimension.
	SkillStrengths map[string]float64

	// SkillWeights ranks tiers when averaging a user's per-sport levels.
	SkillWeights map[string]float64

	// UnknownSkillWeight is used for levels missing from SkillWeights.
	UnknownSkillWeight float64

	// DefaultSkill applies when neither the user nor the match states a tier.
	DefaultSkill string

	// CompetitiveKeywords mark a match competitive when found in its title
	// or description.
	CompetitiveKeywords []string

	// Location is the time zone used to bucket match start times.
	Location *time.Location
}

// DefaultConfig returns the production encoder configuration.
func DefaultConfig() *Config {
	return &Config{
		Layout:     DefaultLayout(),
		SportDecay: 0.01,
		SkillStrengths: map[string]float64{
			"beginner":     0.5,
			"intermediate": 0.75,
			"advanced":     0.9,
			"professional": 1.0,
		},
		SkillWeights: map[string]float64{
			"beginner":     1,
			"intermediate": 2,
			"advanced":     3,
			"professional": 4,
		},
		UnknownSkillWeight:  2,
		DefaultSkill:        "intermediate",
		CompetitiveKeywords: []string{"competitive", "tournament"},
		Location:            time.UTC,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if c.SportDecay < 0 || float64(c.Layout.SportWidth-1)*c.SportDecay >= 1 {
		return fmt.Errorf("encoder.sport_decay must keep every sport dimension positive, got %f", c.SportDecay)
	}
	if _, ok := c.Layout.Skills[c.DefaultSkill]; !ok {
		return fmt.Errorf("encoder.default_skill %q is not a layout skill", c.DefaultSkill)
	}
	for level := range c.Layout.Skills {
		s, ok := c.SkillStrengths[level]
		if !ok {
			return fmt.Errorf("encoder.skill_strengths missing %q", level)
		}
		if s <= 0 || s > 1 {
			return fmt.Errorf("encoder.skill_strengths.%s must be in (0,1], got %f", level, s)
		}
		if _, ok := c.SkillWeights[level]; !ok {
			return fmt.Errorf("encoder.skill_weights missing %q", level)
		}
	}
	if c.Location == nil {
		return fmt.Errorf("encoder.location is required")
	}
	return nil
}
