// Copyright 2025 The HistoriaViva Authors
// SPDX-License-Identifier: Apache-2.0

package wikipedia

import "github.com/jcodagnone/historiaviva/spatial"

// Source identifies one upstream resource. It labels metrics, logs and circuit breakers.
type Source string

// Upstream resources used by the client.
const (
	SourceGeoSearch Source = "geosearch"
	SourceNearby    Source = "nearby"
	SourceSummary   Source = "summary"
	SourceOnThisDay Source = "onthisday"
)

// GeoSearchHit is one entry of the MediaWiki list=geosearch query.
type GeoSearchHit struct {
	PageID int     `json:"pageid"`
	Title  string  `json:"title"`
	// Lat and Lon are nil when MediaWiki omits them.
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
	// Dist is the distance in meters reported by MediaWiki.
	Dist float64 `json:"dist"`
}

// Coordinate returns the hit position, or nil unless both lat and lon are
// present and finite.
func (h GeoSearchHit) Coordinate() *spatial.Coordinate {
	if h.Lat == nil || h.Lon == nil {
		return nil
	}

	c := spatial.Coordinate{Lat: *h.Lat, Lon: *h.Lon}
	if !c.IsFinite() {
		return nil
	}

	return &c
}

type geoSearchResponse struct {
	Error *APIError `json:"error"`
	Query *struct {
		GeoSearch []GeoSearchHit `json:"geosearch"`
	} `json:"query"`
}

// NearbyPage is one entry of the REST page/nearby resource. Coordinates may be missing.
type NearbyPage struct {
	Title       string              `json:"title"`
	Coordinates *spatial.Coordinate `json:"coordinates,omitempty"`
}

type nearbyResponse struct {
	Pages []NearbyPage `json:"pages"`
}

// PageURLs holds the canonical URL of a page for one platform.
type PageURLs struct {
	Page string `json:"page"`
}

// ContentURLs holds the canonical URLs of a page.
type ContentURLs struct {
	Desktop PageURLs `json:"desktop"`
}

// Summary is the REST page/summary resource, reduced to the fields we use.
type Summary struct {
	Title       string      `json:"title"`
	Extract     string      `json:"extract"`
	ContentURLs ContentURLs `json:"content_urls"`
}

// OnThisDayEntry is one event or birth of the on-this-day feed.
type OnThisDayEntry struct {
	Year  int       `json:"year"`
	Text  string    `json:"text"`
	Pages []Summary `json:"pages"`
}

// OnThisDayFeed is the REST feed/onthisday/all resource, reduced to events and births.
type OnThisDayFeed struct {
	Events []OnThisDayEntry `json:"events"`
	Births []OnThisDayEntry `json:"births"`
}
