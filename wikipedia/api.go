// Copyright 2025 The HistoriaViva Authors
// SPDX-License-Identifier: Apache-2.0

package wikipedia

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jcodagnone/historiaviva/spatial"
)

// GeoSearch lists the pages within radiusMeters of coord using the MediaWiki
// action API. Hits without a title are discarded.
func (c *Client) GeoSearch(ctx context.Context, lang string, coord spatial.Coordinate, radiusMeters, limit int) ([]GeoSearchHit, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "geosearch")
	params.Set("gscoord", formatDegrees(coord.Lat)+"|"+formatDegrees(coord.Lon))
	params.Set("gsradius", strconv.Itoa(radiusMeters))
	params.Set("gslimit", strconv.Itoa(limit))
	params.Set("format", "json")

	body, err := c.get(ctx, SourceGeoSearch, c.endpoint(lang, "/w/api.php", params))
	if err != nil {
		return nil, err
	}

	var resp geoSearchResponse
	if err := decode(SourceGeoSearch, body, &resp); err != nil {
		return nil, err
	}

	if resp.Error != nil {
		return nil, resp.Error
	}

	if resp.Query == nil {
		return nil, fmt.Errorf("%w: geosearch response without query", ErrMalformedResponse)
	}

	hits := make([]GeoSearchHit, 0, len(resp.Query.GeoSearch))
	for _, hit := range resp.Query.GeoSearch {
		if hit.Title != "" {
			hits = append(hits, hit)
		}
	}

	return hits, nil
}

// Nearby lists the pages near coord using the REST page/nearby resource.
// Pages without a title are discarded.
func (c *Client) Nearby(ctx context.Context, lang string, coord spatial.Coordinate) ([]NearbyPage, error) {
	path := "/api/rest_v1/page/nearby/" + formatDegrees(coord.Lat) + "/" + formatDegrees(coord.Lon)

	body, err := c.get(ctx, SourceNearby, c.endpoint(lang, path, nil))
	if err != nil {
		return nil, err
	}

	var resp nearbyResponse
	if err := decode(SourceNearby, body, &resp); err != nil {
		return nil, err
	}

	pages := make([]NearbyPage, 0, len(resp.Pages))
	for _, page := range resp.Pages {
		if page.Title != "" {
			pages = append(pages, page)
		}
	}

	return pages, nil
}

// Summary fetches the REST page/summary resource of title.
func (c *Client) Summary(ctx context.Context, lang, title string) (*Summary, error) {
	path := "/api/rest_v1/page/summary/" + url.PathEscape(title)

	body, err := c.get(ctx, SourceSummary, c.endpoint(lang, path, nil))
	if err != nil {
		return nil, err
	}

	var summary Summary
	if err := decode(SourceSummary, body, &summary); err != nil {
		return nil, err
	}

	return &summary, nil
}

// OnThisDay fetches every event kind of the on-this-day feed for month/day.
func (c *Client) OnThisDay(ctx context.Context, lang string, month, day int) (*OnThisDayFeed, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil, fmt.Errorf("invalid date %02d/%02d", month, day)
	}

	path := fmt.Sprintf("/api/rest_v1/feed/onthisday/all/%02d/%02d", month, day)

	body, err := c.get(ctx, SourceOnThisDay, c.endpoint(lang, path, nil))
	if err != nil {
		return nil, err
	}

	var feed OnThisDayFeed
	if err := decode(SourceOnThisDay, body, &feed); err != nil {
		return nil, err
	}

	return &feed, nil
}
