// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package vector

import "math"

// Vector is a fixed-length feature vector.
type Vector []float64

// New returns a zero vector of length n.
func New(n int) Vector {
	return make(Vector, n)
}

// Norm returns the Euclidean norm.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// IsZero reports whether every element is zero.
func (v Vector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// NonZero counts the non-zero elements.
func (v Vector) NonZero() int {
	n := 0
	for _, x := range v {
		if x != 0 {
			n++
		}
	}
	return n
}

// Normalize scales v in place to unit length. A zero vector is left as is.
func (v Vector) Normalize() Vector {
	norm := v.Norm()
	if norm == 0 {
		return v
	}
	for i := range v {
		v[i] /= norm
	}
	return v
}

// Clone returns a copy of v.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Slice returns the half-open range [start, end), clipped to v.
func (v Vector) Slice(start, end int) Vector {
	if start < 0 {
		start = 0
	}
	if end > len(v) {
		end = len(v)
	}
	if start >= end {
		return nil
	}
	return v[start:end]
}

// Summary describes a vector without its values.
type Summary struct {
	Dimension int     `json:"dimension"`
	NonZero   int     `json:"non_zero"`
	Norm      float64 `json:"norm"`
}

// Summarize returns the summary of v.
func (v Vector) Summarize() Summary {
	return Summary{
		Dimension: len(v),
		NonZero:   v.NonZero(),
		Norm:      v.Norm(),
	}
}
