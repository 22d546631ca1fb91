// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package vector

import (
	"fmt"
	"sort"
	"time"
)

// Dimension is the length of every user and match vector.
const Dimension = 128

// Block boundaries, half-open [Start, End). The similarity engine scores
// these blocks independently.
const (
	SportStart       = 0
	SportEnd         = 88
	AffiliationStart = 88
	AffiliationEnd   = 96
	ProficiencyStart = 96
	ProficiencyEnd   = 104
	ScheduleStart    = 104
	ScheduleEnd      = 120
	SecondaryStart   = 120
	SecondaryEnd     = 128
)

// TimeSlot maps an hour range [StartHour, EndHour) onto a schedule dimension.
type TimeSlot struct {
	Name      string
	StartHour int
	EndHour   int
	Index     int
}

// AgeBracket assigns ages below MaxAge to Index. MaxAge 0 is open-ended.
type AgeBracket struct {
	MaxAge int
	Index  int
}

// VenueRule assigns a venue whose name contains Keyword to Index.
type VenueRule struct {
	Keyword string
	Index   int
}

// Layout assigns every semantic attribute a fixed dimension.
// User and match vectors share one layout so their dot products align.
type Layout struct {
	Dimension int

	// SportWidth is the number of dimensions each sport occupies.
	SportWidth int

	// Sports maps canonical sport names to the first dimension of their range.
	Sports map[string]int

	// Faculties maps upper-case faculty names to a dimension.
	Faculties map[string]int

	// Skills maps lower-case proficiency tiers to a dimension.
	Skills map[string]int

	// Days is indexed by time.Weekday.
	Days [7]int

	TimeSlots []TimeSlot

	// Genders maps lower-case gender names to a dimension.
	Genders map[string]int

	Casual      int
	Competitive int

	// AgeBrackets are evaluated in order; the first match wins.
	AgeBrackets []AgeBracket

	// Venues are evaluated in order; VenueOther applies when none match.
	Venues     []VenueRule
	VenueOther int
}

// DefaultLayout returns the 128-dimension layout.
func DefaultLayout() Layout {
	return Layout{
		Dimension:  Dimension,
		SportWidth: 8,
		Sports: map[string]int{
			"Basketball":   0,
			"Badminton":    8,
			"Football":     16,
			"Tennis":       24,
			"Volleyball":   32,
			"Table Tennis": 40,
			"Futsal":       48,
			"Frisbee":      56,
			"Hockey":       64,
			"Rugby":        72,
			"Squash":       80,
		},
		Faculties: map[string]int{
			"ENGINEERING":       88,
			"COMPUTER SCIENCES": 89,
			"BUSINESS":          90,
			"MEDICINE":          91,
			"LAW":               92,
			"ARTS":              93,
			"SCIENCE":           94,
			"OTHER":             95,
		},
		Skills: map[string]int{
			"beginner":     96,
			"intermediate": 97,
			"advanced":     98,
			"professional": 99,
		},
		Days: [7]int{
			time.Sunday:    110,
			time.Monday:    104,
			time.Tuesday:   105,
			time.Wednesday: 106,
			time.Thursday:  107,
			time.Friday:    108,
			time.Saturday:  109,
		},
		TimeSlots: []TimeSlot{
			{Name: "early morning", StartHour: 6, EndHour: 9, Index: 111},
			{Name: "morning", StartHour: 9, EndHour: 12, Index: 112},
			{Name: "lunch", StartHour: 12, EndHour: 14, Index: 113},
			{Name: "afternoon", StartHour: 14, EndHour: 17, Index: 114},
			{Name: "evening", StartHour: 17, EndHour: 19, Index: 115},
			{Name: "night", StartHour: 19, EndHour: 22, Index: 116},
			{Name: "late night", StartHour: 22, EndHour: 24, Index: 117},
			{Name: "very early", StartHour: 0, EndHour: 6, Index: 118},
		},
		Genders: map[string]int{
			"male":   120,
			"female": 121,
		},
		Casual:      122,
		Competitive: 123,
		AgeBrackets: []AgeBracket{
			{MaxAge: 20, Index: 124},
			{MaxAge: 25, Index: 125},
			{MaxAge: 30, Index: 126},
			{MaxAge: 0, Index: 127},
		},
		Venues: []VenueRule{
			{Keyword: "court", Index: 124},
			{Keyword: "field", Index: 125},
			{Keyword: "pool", Index: 126},
		},
		VenueOther: 127,
	}
}

// Validate checks that every dimension is inside the vector and that no two
// attributes of the same vector kind share a dimension. Age brackets and
// venues are allowed to share dimensions because they never appear in the
// same vector.
func (l *Layout) Validate() error {
	if l.Dimension <= 0 {
		return fmt.Errorf("layout.dimension must be positive, got %d", l.Dimension)
	}
	if l.SportWidth <= 0 {
		return fmt.Errorf("layout.sport_width must be positive, got %d", l.SportWidth)
	}

	user := newOwnership(l.Dimension)
	match := newOwnership(l.Dimension)

	for _, name := range sortedKeys(l.Sports) {
		start := l.Sports[name]
		for i := 0; i < l.SportWidth; i++ {
			if err := both(user, match, start+i, "sport "+name); err != nil {
				return err
			}
		}
	}
	for _, name := range sortedKeys(l.Faculties) {
		if err := both(user, match, l.Faculties[name], "faculty "+name); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(l.Skills) {
		if err := both(user, match, l.Skills[name], "skill "+name); err != nil {
			return err
		}
	}
	for day, idx := range l.Days {
		if err := both(user, match, idx, "day "+time.Weekday(day).String()); err != nil {
			return err
		}
	}
	for _, slot := range l.TimeSlots {
		if slot.StartHour < 0 || slot.EndHour > 24 || slot.StartHour >= slot.EndHour {
			return fmt.Errorf("layout.time_slots %q has invalid hours %d-%d", slot.Name, slot.StartHour, slot.EndHour)
		}
		if err := match.claim(slot.Index, "time slot "+slot.Name); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(l.Genders) {
		if err := both(user, match, l.Genders[name], "gender "+name); err != nil {
			return err
		}
	}
	if err := both(user, match, l.Casual, "play style casual"); err != nil {
		return err
	}
	if err := both(user, match, l.Competitive, "play style competitive"); err != nil {
		return err
	}
	for _, b := range l.AgeBrackets {
		if err := user.claim(b.Index, fmt.Sprintf("age bracket <%d", b.MaxAge)); err != nil {
			return err
		}
	}
	for _, v := range l.Venues {
		if err := match.claim(v.Index, "venue "+v.Keyword); err != nil {
			return err
		}
	}
	return match.claim(l.VenueOther, "venue other")
}

// ownership records which attribute claimed each dimension.
type ownership []string

func newOwnership(n int) ownership {
	return make(ownership, n)
}

func (o ownership) claim(idx int, owner string) error {
	if idx < 0 || idx >= len(o) {
		return fmt.Errorf("layout: %s dimension %d out of range [0,%d)", owner, idx, len(o))
	}
	if o[idx] != "" {
		return fmt.Errorf("layout: %s overlaps %s at dimension %d", owner, o[idx], idx)
	}
	o[idx] = owner
	return nil
}

func both(user, match ownership, idx int, owner string) error {
	if err := user.claim(idx, owner); err != nil {
		return err
	}
	return match.claim(idx, owner)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
