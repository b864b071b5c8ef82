// Copyright 2025 The HistoriaViva Authors
// SPDX-License-Identifier: Apache-2.0

// Package wikipediatest provides a fake Wikipedia HTTP server for tests.
package wikipediatest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/jcodagnone/historiaviva/wikipedia"
)

// Fixture is the content served by a Server. A zero status means 200.
type Fixture struct {
	GeoSearch       []wikipedia.GeoSearchHit
	GeoSearchStatus int

	Nearby       []wikipedia.NearbyPage
	NearbyStatus int

	// Summaries are keyed by title; unknown titles answer 404.
	Summaries map[string]wikipedia.Summary
	// SummaryStatus overrides the status of single titles.
	SummaryStatus map[string]int

	OnThisDay       *wikipedia.OnThisDayFeed
	OnThisDayStatus int
}

// Server is a running fake Wikipedia.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	fixture    Fixture
	calls      map[wikipedia.Source]int
	userAgents []string
}

// NewServer starts a fake Wikipedia serving fixture. Callers must Close it.
func NewServer(fixture Fixture) *Server {
	s := &Server{fixture: fixture, calls: map[wikipedia.Source]int{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))

	return s
}

// SetFixture replaces the served content.
func (s *Server) SetFixture(fixture Fixture) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fixture = fixture
}

// Calls returns how many requests source received.
func (s *Server) Calls(source wikipedia.Source) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls[source]
}

// UserAgents returns the User-Agent of every request received.
func (s *Server) UserAgents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.userAgents...)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	fixture := s.fixture
	s.mu.Unlock()

	source, status, body := route(fixture, r)

	s.mu.Lock()
	s.calls[source]++
	s.userAgents = append(s.userAgents, r.Header.Get("User-Agent"))
	s.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}

	if status != http.StatusOK {
		w.WriteHeader(status)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func route(f Fixture, r *http.Request) (wikipedia.Source, int, any) {
	switch path := r.URL.Path; {
	case path == "/w/api.php" && r.URL.Query().Get("list") == "geosearch":
		hits := f.GeoSearch
		if hits == nil {
			hits = []wikipedia.GeoSearchHit{}
		}

		return wikipedia.SourceGeoSearch, f.GeoSearchStatus, map[string]any{
			"batchcomplete": "",
			"query":         map[string]any{"geosearch": hits},
		}
	case strings.HasPrefix(path, "/api/rest_v1/page/nearby/"):
		pages := f.Nearby
		if pages == nil {
			pages = []wikipedia.NearbyPage{}
		}

		return wikipedia.SourceNearby, f.NearbyStatus, map[string]any{"pages": pages}
	case strings.HasPrefix(path, "/api/rest_v1/page/summary/"):
		title := strings.TrimPrefix(path, "/api/rest_v1/page/summary/")
		if status, ok := f.SummaryStatus[title]; ok {
			return wikipedia.SourceSummary, status, nil
		}

		summary, ok := f.Summaries[title]
		if !ok {
			return wikipedia.SourceSummary, http.StatusNotFound, nil
		}

		return wikipedia.SourceSummary, http.StatusOK, summary
	case strings.HasPrefix(path, "/api/rest_v1/feed/onthisday/"):
		if f.OnThisDay == nil {
			return wikipedia.SourceOnThisDay, http.StatusNotFound, nil
		}

		return wikipedia.SourceOnThisDay, f.OnThisDayStatus, f.OnThisDay
	default:
		return "", http.StatusNotFound, nil
	}
}
