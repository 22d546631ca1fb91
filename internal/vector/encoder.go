// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package vector

import (
	"fmt"
	"sort"
	"strings"
)

// Encoder maps user profiles and match records onto vectors.
// It is stateless after construction and safe for concurrent use.
type Encoder struct {
	cfg Config

	// sportIndex maps folded sport names to canonical names.
	sportIndex map[string]string
}

// NewEncoder creates an encoder. A nil config uses DefaultConfig.
func NewEncoder(cfg *Config) (*Encoder, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid encoder config: %w", err)
	}

	idx := make(map[string]string, len(cfg.Layout.Sports))
	for name := range cfg.Layout.Sports {
		idx[foldName(name)] = name
	}

	return &Encoder{cfg: *cfg, sportIndex: idx}, nil
}

// Dimension returns the length of encoded vectors.
func (e *Encoder) Dimension() int {
	return e.cfg.Layout.Dimension
}

// SportPreference is one normalized entry of a user's sport list.
type SportPreference struct {
	Sport string `json:"sport"`
	Level string `json:"level,omitempty"`
}

// EncodeUser builds a user preference vector.
//
// Recognised fields: sport_preferences (strings or objects with
// sport_name/name and skill_level/level), skill_levels (object of
// sport to level), faculty, available_days, gender, play_style, age.
func (e *Encoder) EncodeUser(r Record) Vector {
	return e.encodeUser(r).Normalize()
}

// encodeUser fills the user vector without normalizing it.
func (e *Encoder) encodeUser(r Record) Vector {
	l := &e.cfg.Layout
	v := New(l.Dimension)

	prefs := e.SportPreferences(r)
	for _, p := range prefs {
		e.fillSport(v, p.Sport)
	}

	if idx, ok := e.faculty(r, "faculty"); ok {
		v[idx] = 1
	}

	level := e.averageSkill(r, prefs)
	if idx, ok := l.Skills[level]; ok {
		v[idx] = e.cfg.SkillStrengths[level]
	}

	if days, ok := r.Strings("available_days"); ok {
		for _, d := range days {
			if idx, ok := dayIndex(l, d); ok {
				v[idx] = 1
			}
		}
	}

	if idx, ok := e.gender(r, "gender"); ok {
		v[idx] = 1
	}

	if style, ok := r.String("play_style"); ok {
		switch strings.ToLower(style) {
		case "casual":
			v[l.Casual] = 1
		case "competitive":
			v[l.Competitive] = 1
		}
	}

	if age, ok := r.Int("age"); ok && age > 0 {
		for _, b := range l.AgeBrackets {
			if b.MaxAge == 0 || age < b.MaxAge {
				v[b.Index] = 1
				break
			}
		}
	}

	return v
}

// EncodeMatch builds a match characteristic vector.
//
// Recognised fields: sport_name, sport (string or object with name),
// sports.name, skill_level, start_time, title, description,
// host.faculty, host.gender, host.play_style, location_name,
// location.name, locations.name.
func (e *Encoder) EncodeMatch(r Record) Vector {
	return e.encodeMatch(r).Normalize()
}

// encodeMatch fills the match vector without normalizing it.
func (e *Encoder) encodeMatch(r Record) Vector {
	l := &e.cfg.Layout
	v := New(l.Dimension)

	if name, ok := r.FirstString(
		[]string{"sport_name"},
		[]string{"sport"},
		[]string{"sport", "name"},
		[]string{"sports", "name"},
	); ok {
		if canonical, ok := e.canonicalSport(name); ok {
			e.fillSport(v, canonical)
		}
	}

	if idx, ok := e.faculty(r, "host", "faculty"); ok {
		v[idx] = 1
	}

	level := e.cfg.DefaultSkill
	if s, ok := r.String("skill_level"); ok {
		level = strings.ToLower(s)
	}
	if idx, ok := l.Skills[level]; ok {
		v[idx] = 1
	}

	if start, ok := r.Time(e.cfg.Location, "start_time"); ok {
		local := start.In(e.cfg.Location)
		v[l.Days[local.Weekday()]] = 1
		hour := local.Hour()
		for _, slot := range l.TimeSlots {
			if hour >= slot.StartHour && hour < slot.EndHour {
				v[slot.Index] = 1
				break
			}
		}
	}

	if idx, ok := e.gender(r, "host", "gender"); ok {
		v[idx] = 1
	}

	if e.competitive(r) {
		v[l.Competitive] = 1
	} else {
		v[l.Casual] = 1
	}

	venue, _ := r.FirstString(
		[]string{"location_name"},
		[]string{"location", "name"},
		[]string{"locations", "name"},
	)
	v[venueIndex(l, venue)] = 1

	return v
}

// SportPreferences extracts the recognised sports of a user record in
// input order, dropping unknown sports and duplicates.
func (e *Encoder) SportPreferences(r Record) []SportPreference {
	items, ok := r.List("sport_preferences")
	if !ok {
		return nil
	}

	seen := make(map[string]bool, len(items))
	prefs := make([]SportPreference, 0, len(items))
	for _, item := range items {
		var name, level string
		switch p := item.(type) {
		case string:
			name = p
		default:
			rec, ok := asRecord(p)
			if !ok {
				continue
			}
			name, _ = rec.FirstString([]string{"sport_name"}, []string{"name"}, []string{"sport"})
			level, _ = rec.FirstString([]string{"skill_level"}, []string{"level"})
		}
		canonical, ok := e.canonicalSport(name)
		if !ok || seen[canonical] {
			continue
		}
		seen[canonical] = true
		prefs = append(prefs, SportPreference{Sport: canonical, Level: strings.ToLower(level)})
	}
	return prefs
}

// averageSkill ranks a user's stated levels and rounds the mean back to a
// tier. Per-sport levels win over the skill_levels object.
func (e *Encoder) averageSkill(r Record, prefs []SportPreference) string {
	var levels []string
	if len(prefs) > 0 {
		for _, p := range prefs {
			levels = append(levels, p.Level)
		}
	} else if m, ok := r.Nested("skill_levels"); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s, ok := m[k].(string); ok {
				levels = append(levels, strings.ToLower(strings.TrimSpace(s)))
			}
		}
	}
	if len(levels) == 0 {
		return e.cfg.DefaultSkill
	}

	var sum float64
	for _, lvl := range levels {
		w, ok := e.cfg.SkillWeights[lvl]
		if !ok {
			w = e.cfg.UnknownSkillWeight
		}
		sum += w
	}
	return e.roundSkill(sum / float64(len(levels)))
}

// roundSkill returns the tier whose weight is nearest avg, rounding half up.
func (e *Encoder) roundSkill(avg float64) string {
	type tier struct {
		name   string
		weight float64
	}
	tiers := make([]tier, 0, len(e.cfg.SkillWeights))
	for name, w := range e.cfg.SkillWeights {
		tiers = append(tiers, tier{name, w})
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].weight < tiers[j].weight })

	best := tiers[0].name
	for i := 1; i < len(tiers); i++ {
		midpoint := (tiers[i-1].weight + tiers[i].weight) / 2
		if avg >= midpoint {
			best = tiers[i].name
		}
	}
	return best
}

func (e *Encoder) fillSport(v Vector, sport string) {
	start, ok := e.cfg.Layout.Sports[sport]
	if !ok {
		return
	}
	for i := 0; i < e.cfg.Layout.SportWidth; i++ {
		v[start+i] = 1 - float64(i)*e.cfg.SportDecay
	}
}

func (e *Encoder) canonicalSport(name string) (string, bool) {
	canonical, ok := e.sportIndex[foldName(name)]
	return canonical, ok
}

func (e *Encoder) faculty(r Record, path ...string) (int, bool) {
	s, ok := r.String(path...)
	if !ok {
		return 0, false
	}
	idx, ok := e.cfg.Layout.Faculties[strings.ToUpper(s)]
	return idx, ok
}

func (e *Encoder) gender(r Record, path ...string) (int, bool) {
	s, ok := r.String(path...)
	if !ok {
		return 0, false
	}
	idx, ok := e.cfg.Layout.Genders[strings.ToLower(s)]
	return idx, ok
}

func (e *Encoder) competitive(r Record) bool {
	title, _ := r.String("title")
	desc, _ := r.String("description")
	title = strings.ToLower(title)
	desc = strings.ToLower(desc)
	for _, kw := range e.cfg.CompetitiveKeywords {
		if strings.Contains(title, kw) || strings.Contains(desc, kw) {
			return true
		}
	}
	style, _ := r.String("host", "play_style")
	return strings.EqualFold(style, "competitive")
}

func dayIndex(l *Layout, day string) (int, bool) {
	for wd, idx := range l.Days {
		if strings.EqualFold(day, weekdayNames[wd]) {
			return idx, true
		}
	}
	return 0, false
}

var weekdayNames = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

func venueIndex(l *Layout, name string) int {
	name = strings.ToLower(name)
	if name != "" {
		for _, rule := range l.Venues {
			if strings.Contains(name, rule.Keyword) {
				return rule.Index
			}
		}
	}
	return l.VenueOther
}

// foldName normalises case and separators so "table_tennis" and
// "Table Tennis" resolve to the same sport.
func foldName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
