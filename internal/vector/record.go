// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package vector

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Record is a loosely typed profile or match record.
// Every accessor takes a key path and reports whether a usable value was
// found, so a missing or mistyped field reads as absent.
type Record map[string]any

// ParseRecord decodes a JSON object into a Record.
func ParseRecord(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	if r == nil {
		r = Record{}
	}
	return r, nil
}

// Get walks path through nested objects.
func (r Record) Get(path ...string) (any, bool) {
	if len(path) == 0 || r == nil {
		return nil, false
	}
	cur := r
	for i, key := range path {
		v, ok := cur[key]
		if !ok || v == nil {
			return nil, false
		}
		if i == len(path)-1 {
			return v, true
		}
		next, ok := asRecord(v)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// String returns a trimmed non-empty string at path.
func (r Record) String(path ...string) (string, bool) {
	v, ok := r.Get(path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// FirstString returns the first path that holds a string.
func (r Record) FirstString(paths ...[]string) (string, bool) {
	for _, p := range paths {
		if s, ok := r.String(p...); ok {
			return s, true
		}
	}
	return "", false
}

// Int returns an integer at path. JSON numbers and numeric strings are
// accepted; fractional values are truncated.
func (r Record) Int(path ...string) (int, bool) {
	v, ok := r.Get(path...)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return int(f), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// Strings returns the string elements of a list at path. Non-string
// elements are skipped.
func (r Record) Strings(path ...string) ([]string, bool) {
	v, ok := r.Get(path...)
	if !ok {
		return nil, false
	}
	switch list := v.(type) {
	case []string:
		out := make([]string, 0, len(list))
		for _, s := range list {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, len(out) > 0
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
		return out, len(out) > 0
	default:
		return nil, false
	}
}

// List returns a list at path.
func (r Record) List(path ...string) ([]any, bool) {
	v, ok := r.Get(path...)
	if !ok {
		return nil, false
	}
	switch list := v.(type) {
	case []any:
		return list, len(list) > 0
	case []Record:
		out := make([]any, len(list))
		for i := range list {
			out[i] = list[i]
		}
		return out, len(out) > 0
	case []map[string]any:
		out := make([]any, len(list))
		for i := range list {
			out[i] = list[i]
		}
		return out, len(out) > 0
	case []string:
		out := make([]any, len(list))
		for i := range list {
			out[i] = list[i]
		}
		return out, len(out) > 0
	default:
		return nil, false
	}
}

// Nested returns the object at path.
func (r Record) Nested(path ...string) (Record, bool) {
	v, ok := r.Get(path...)
	if !ok {
		return nil, false
	}
	return asRecord(v)
}

// timeLayouts are tried in order when a time field is a string.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05.999999-07",
}

// Time returns a timestamp at path. Zone-less strings are read in loc.
func (r Record) Time(loc *time.Location, path ...string) (time.Time, bool) {
	v, ok := r.Get(path...)
	if !ok {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.ParseInLocation(layout, s, loc); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

func asRecord(v any) (Record, bool) {
	switch m := v.(type) {
	case Record:
		return m, true
	case map[string]any:
		return Record(m), true
	default:
		return nil, false
	}
}
