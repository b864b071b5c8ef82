// Copyright 2025 The HistoriaViva Authors
// SPDX-License-Identifier: Apache-2.0

// Package history finds Wikipedia pages about places near a coordinate and
// the events that happened on the current day.
package history

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/jcodagnone/historiaviva/logging"
	"github.com/jcodagnone/historiaviva/metrics"
	"github.com/jcodagnone/historiaviva/spatial"
	"github.com/jcodagnone/historiaviva/wikipedia"
	"golang.org/x/sync/errgroup"
)

const (
	// SearchRadius is the geosearch radius in meters.
	SearchRadius = 10000
	// SearchLimit is the number of raw hits requested from geosearch.
	SearchLimit = 20
	// MaxCandidates is the number of hits of either source that get enriched.
	MaxCandidates = 15
	// MinExtractLength is the exclusive lower bound, in characters, of an acceptable extract.
	MinExtractLength = 50

	defaultConcurrency = 4
)

// Wiki is the subset of the Wikipedia client the service depends on.
type Wiki interface {
	GeoSearch(ctx context.Context, lang string, coord spatial.Coordinate, radiusMeters, limit int) ([]wikipedia.GeoSearchHit, error)
	Nearby(ctx context.Context, lang string, coord spatial.Coordinate) ([]wikipedia.NearbyPage, error)
	Summary(ctx context.Context, lang, title string) (*wikipedia.Summary, error)
	OnThisDay(ctx context.Context, lang string, month, day int) (*wikipedia.OnThisDayFeed, error)
}

// ServiceOptions configuration for Service.
type ServiceOptions struct {
	// Concurrency is the maximum number of summaries fetched at once
	Concurrency int

	// Now is the clock used by TodayInHistory
	Now func() time.Time
}

// Service aggregates the Wikipedia sources. It holds no per-request state.
type Service struct {
	wiki        Wiki
	concurrency int
	now         func() time.Time
}

// NewService creates a new service on top of wiki.
func NewService(wiki Wiki, options *ServiceOptions) *Service {
	if options == nil {
		options = &ServiceOptions{}
	}

	s := &Service{
		wiki:        wiki,
		concurrency: options.Concurrency,
		now:         options.Now,
	}

	if s.concurrency <= 0 {
		s.concurrency = defaultConcurrency
	}

	if s.now == nil {
		s.now = time.Now
	}

	return s
}

// Discover returns the pages near coord, nearest first. It tries geosearch
// and falls back to the nearby resource only when geosearch produced no
// acceptable record. It never fails: every upstream problem degrades to
// fewer, or no, records.
func (s *Service) Discover(ctx context.Context, coord spatial.Coordinate, lang Language) (records []LocationRecord) {
	log := logging.Ctx(ctx).With().Stringer("coord", coord).Str("lang", string(lang)).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("panic", fmt.Sprint(r)).Msg("location discovery aborted")
			metrics.Discoveries.WithLabelValues("none").Inc()

			records = []LocationRecord{}
		}
	}()

	records = s.enrichAll(ctx, s.geoSearchCandidates(ctx, coord, lang), lang)
	if len(records) > 0 {
		log.Debug().Int("records", len(records)).Msg("answered by geosearch")
		metrics.Discoveries.WithLabelValues(string(wikipedia.SourceGeoSearch)).Inc()

		return SortByDistance(records)
	}

	pages, err := s.wiki.Nearby(ctx, string(lang), coord)
	if err != nil {
		log.Warn().Err(err).Msg("nearby pages unavailable")
		metrics.Discoveries.WithLabelValues("none").Inc()

		return []LocationRecord{}
	}

	candidates := make([]Candidate, 0, min(len(pages), MaxCandidates))
	for _, page := range pages[:min(len(pages), MaxCandidates)] {
		candidates = append(candidates, newCandidate(page.Title, coord, page.Coordinates))
	}

	records = s.enrichAll(ctx, candidates, lang)
	log.Debug().Int("candidates", len(candidates)).Int("records", len(records)).Msg("answered by nearby")

	source := string(wikipedia.SourceNearby)
	if len(records) == 0 {
		source = "none"
	}

	metrics.Discoveries.WithLabelValues(source).Inc()

	return SortByDistance(records)
}

func (s *Service) geoSearchCandidates(ctx context.Context, coord spatial.Coordinate, lang Language) []Candidate {
	hits, err := s.wiki.GeoSearch(ctx, string(lang), coord, SearchRadius, SearchLimit)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("geosearch unavailable, falling back to nearby pages")

		return nil
	}

	candidates := make([]Candidate, 0, min(len(hits), MaxCandidates))
	for _, hit := range hits[:min(len(hits), MaxCandidates)] {
		candidates = append(candidates, newCandidate(hit.Title, coord, hit.Coordinate()))
	}

	return candidates
}

// enrichAll enriches candidates concurrently and returns the accepted records
// in candidate order.
func (s *Service) enrichAll(ctx context.Context, candidates []Candidate, lang Language) []LocationRecord {
	slots := make([]*LocationRecord, len(candidates))

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, candidate := range candidates {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					logging.Ctx(ctx).Error().Str("title", candidate.Title).Str("panic", fmt.Sprint(r)).Msg("enrichment aborted")
					metrics.Enrichments.WithLabelValues("failed").Inc()
				}
			}()

			if record, ok := s.Enrich(ctx, candidate, lang); ok {
				slots[i] = record
			}

			return nil
		})
	}

	_ = g.Wait()

	records := make([]LocationRecord, 0, len(candidates))
	for _, record := range slots {
		if record != nil {
			records = append(records, *record)
		}
	}

	return records
}

// Enrich fetches the summary of candidate and turns it into a record. It
// returns false when the summary cannot be fetched or its extract is not
// longer than MinExtractLength characters.
func (s *Service) Enrich(ctx context.Context, candidate Candidate, lang Language) (*LocationRecord, bool) {
	summary, err := s.wiki.Summary(ctx, string(lang), candidate.Title)
	if err == nil && summary == nil {
		err = wikipedia.ErrMalformedResponse
	}

	if err != nil {
		event := logging.Ctx(ctx).Warn()
		if wikipedia.IsNotFound(err) {
			event = logging.Ctx(ctx).Debug()
		}

		event.Err(err).Str("title", candidate.Title).Msg("summary unavailable")
		metrics.Enrichments.WithLabelValues("failed").Inc()

		return nil, false
	}

	if n := utf8.RuneCountInString(summary.Extract); n <= MinExtractLength {
		logging.Ctx(ctx).Debug().Str("title", candidate.Title).Int("extract", n).Msg("summary too short")
		metrics.Enrichments.WithLabelValues("rejected").Inc()

		return nil, false
	}

	title := summary.Title
	if title == "" {
		title = candidate.Title
	}

	metrics.Enrichments.WithLabelValues("accepted").Inc()

	return &LocationRecord{
		Title:       title,
		Extract:     summary.Extract,
		URL:         summary.ContentURLs.Desktop.Page,
		Distance:    candidate.Distance,
		Coordinates: candidate.Coordinates,
	}, true
}
