// Copyright 2025 The HistoriaViva Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     Coordinate
		expected float64
		delta    float64
	}{
		{
			name:     "same point",
			a:        Coordinate{Lat: 38.7, Lon: -9.1},
			b:        Coordinate{Lat: 38.7, Lon: -9.1},
			expected: 0,
			delta:    0,
		},
		{
			name:     "one degree of longitude on the equator",
			a:        Coordinate{Lat: 0, Lon: 0},
			b:        Coordinate{Lat: 0, Lon: 1},
			expected: 111.19,
			delta:    0.5,
		},
		{
			name:     "lisbon to porto",
			a:        Coordinate{Lat: 38.7223, Lon: -9.1393},
			b:        Coordinate{Lat: 41.1579, Lon: -8.6291},
			expected: 274,
			delta:    3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, DistanceKm(tc.a, tc.b), tc.delta)
		})
	}
}

func TestDistanceKmSymmetry(t *testing.T) {
	points := []Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 38.7, Lon: -9.1},
		{Lat: 41.9, Lon: 12.5},
		{Lat: -33.9, Lon: 151.2},
	}

	for _, a := range points {
		assert.Zero(t, DistanceKm(a, a), "distance of %s to itself", a)

		for _, b := range points {
			assert.InDelta(t, DistanceKm(a, b), DistanceKm(b, a), 1e-9, "%s <-> %s", a, b)
		}
	}
}

func TestDistanceKmNonFinite(t *testing.T) {
	d := DistanceKm(Coordinate{Lat: math.NaN()}, Coordinate{})
	assert.True(t, math.IsNaN(d))
}

func TestCoordinatePredicates(t *testing.T) {
	assert.True(t, Coordinate{}.IsZero())
	assert.False(t, Coordinate{Lat: 0, Lon: 1}.IsZero())
	assert.True(t, Coordinate{Lat: 1, Lon: 2}.IsFinite())
	assert.False(t, Coordinate{Lat: math.Inf(1), Lon: 2}.IsFinite())
	assert.False(t, Coordinate{Lat: 1, Lon: math.NaN()}.IsFinite())
}
