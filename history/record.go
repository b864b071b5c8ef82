// Copyright 2025 The HistoriaViva Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"cmp"
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/jcodagnone/historiaviva/spatial"
)

// ErrCoordinatesRequired is returned by ParseCoordinate for missing or unusable input.
var ErrCoordinatesRequired = errors.New("latitude and longitude are required")

// LocationRecord is a nearby Wikipedia page that passed the quality gate.
type LocationRecord struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
	URL     string `json:"url,omitempty"`
	// Distance from the queried coordinate in kilometers; nil when unknown.
	Distance    *float64            `json:"distance,omitempty"`
	Coordinates *spatial.Coordinate `json:"coordinates,omitempty"`
}

// Candidate is a page reference produced by a discovery source.
type Candidate struct {
	Title       string
	Coordinates *spatial.Coordinate
	Distance    *float64
}

// newCandidate computes the distance from origin when the page position is known.
func newCandidate(title string, origin spatial.Coordinate, position *spatial.Coordinate) Candidate {
	c := Candidate{Title: title}
	if position != nil {
		p := *position
		d := spatial.DistanceKm(origin, p)
		c.Coordinates = &p
		c.Distance = &d
	}

	return c
}

// SortByDistance orders records with a distance first, nearest first, and
// keeps the records without one at the end in their original order.
func SortByDistance(records []LocationRecord) []LocationRecord {
	slices.SortStableFunc(records, func(a, b LocationRecord) int {
		switch {
		case a.Distance == nil && b.Distance == nil:
			return 0
		case a.Distance == nil:
			return 1
		case b.Distance == nil:
			return -1
		default:
			return cmp.Compare(*a.Distance, *b.Distance)
		}
	})

	return records
}

// ParseCoordinate parses the lat/lon query parameters. Missing, unparsable,
// non-finite and zero values are all rejected with ErrCoordinatesRequired.
func ParseCoordinate(lat, lon string) (spatial.Coordinate, error) {
	latV, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return spatial.Coordinate{}, ErrCoordinatesRequired
	}

	lonV, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return spatial.Coordinate{}, ErrCoordinatesRequired
	}

	c := spatial.Coordinate{Lat: latV, Lon: lonV}
	if !c.IsFinite() || c.Lat == 0 || c.Lon == 0 {
		return spatial.Coordinate{}, ErrCoordinatesRequired
	}

	return c, nil
}
