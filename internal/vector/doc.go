// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

// Package vector encodes user profiles and match records into fixed-length
// feature vectors.
//
// # Layout
//
// Every vector has Dimension (128) elements split into disjoint blocks:
//
//	0-87     sports, 8 dimensions per sport
//	88-95    faculty (one-hot)
//	96-103   proficiency tier
//	104-119  schedule: days 104-110, time slots 111-118
//	120-127  secondary: gender, play style, age bracket or venue type
//
// User and match vectors share one Layout, so "interested in Tennis" and
// "is a Tennis match" land on the same dimensions. Inside an active sport
// range the values decay slightly per index (1.0, 0.99, 0.98, ...).
//
// # Usage
//
//	enc, err := vector.NewEncoder(vector.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	profile, _ := vector.ParseRecord(raw)
//	v := enc.EncodeUser(profile)
//
// # Missing Data
//
// Records are loosely typed. Every field is optional and an unknown value
// (for example an unmapped sport) contributes nothing. The final vector is
// L2-normalized, or left as the zero vector when no field produced signal.
//
// # Thread Safety
//
// Encoder is immutable after NewEncoder and safe for concurrent use. Encoding
// is deterministic: the same record always yields a bit-identical vector.
package vector
