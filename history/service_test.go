// Copyright 2025 The HistoriaViva Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jcodagnone/historiaviva/logging"
	"github.com/jcodagnone/historiaviva/wikipedia"
	"github.com/jcodagnone/historiaviva/wikipedia/wikipediatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// outageFixtures returns n geosearch hits whose summaries first fail with 503
// and then answer with acceptable extracts.
func outageFixtures(n int) (down, up wikipediatest.Fixture) {
	for i := range n {
		title := fmt.Sprintf("Place %02d", i)
		up.GeoSearch = append(up.GeoSearch, hitAt(title, float64(i+1)/10))
	}

	down.GeoSearch = up.GeoSearch
	up.Summaries = map[string]wikipedia.Summary{}
	down.SummaryStatus = map[string]int{}

	for _, hit := range up.GeoSearch {
		up.Summaries[hit.Title] = *summaryOf(hit.Title, 80)
		down.SummaryStatus[hit.Title] = http.StatusServiceUnavailable
	}

	return down, up
}

func TestOutageDoesNotLeakIntoLaterRequests(t *testing.T) {
	down, up := outageFixtures(12)

	wiki := wikipediatest.NewServer(down)
	t.Cleanup(wiki.Close)

	client := wikipedia.NewClient(&wikipedia.ClientOptions{BaseURL: wiki.URL, BreakerCooldown: time.Hour})
	s := NewService(client, nil)

	first := s.Discover(context.Background(), origin, Portuguese)
	assert.Empty(t, first)
	assert.Equal(t, 12, wiki.Calls(wikipedia.SourceSummary))

	wiki.SetFixture(up)

	second := s.Discover(context.Background(), origin, Portuguese)
	require.Len(t, second, 12)
	assert.Equal(t, "Place 00", second[0].Title)
	assert.Equal(t, "Place 11", second[11].Title)
	assert.Equal(t, 24, wiki.Calls(wikipedia.SourceSummary))
}

func TestRecoveryWithFanOutAboveHalfOpenLimit(t *testing.T) {
	down, up := outageFixtures(12)

	wiki := wikipediatest.NewServer(down)
	t.Cleanup(wiki.Close)

	client := wikipedia.NewClient(&wikipedia.ClientOptions{BaseURL: wiki.URL, BreakerCooldown: 20 * time.Millisecond})
	s := NewService(client, &ServiceOptions{Concurrency: 8})

	assert.Empty(t, s.Discover(context.Background(), origin, Portuguese))

	wiki.SetFixture(up)
	time.Sleep(50 * time.Millisecond)

	records := s.Discover(context.Background(), origin, Portuguese)
	assert.Len(t, records, 12)
}

func TestDiscoverHitWithoutCoordinates(t *testing.T) {
	wiki := &fakeWiki{
		hits: []wikipedia.GeoSearchHit{{Title: "Unplaced"}, hitAt("Placed", 1)},
		summaries: map[string]*wikipedia.Summary{
			"Unplaced": summaryOf("Unplaced", 80),
			"Placed":   summaryOf("Placed", 80),
		},
	}

	records := NewService(wiki, nil).Discover(context.Background(), origin, Portuguese)
	require.Equal(t, []string{"Placed", "Unplaced"}, titles(records))
	assert.Nil(t, records[1].Distance)
	assert.Nil(t, records[1].Coordinates)
}

// captureLogs sends debug logs as JSON to the returned buffer until the test ends.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { logging.Init(logging.Config{Level: "info"}) })

	return &buf
}

func TestEnrichLogs(t *testing.T) {
	wiki := &fakeWiki{
		summaries: map[string]*wikipedia.Summary{
			"Short": {Title: "Short", Extract: strings.Repeat("é", 50)},
		},
		failures: map[string]error{"Broken": errUpstream},
	}
	s := NewService(wiki, nil)

	tests := []struct {
		title string
		want  []string
	}{
		{title: "Short", want: []string{`"level":"debug"`, `"extract":50`, `"message":"summary too short"`}},
		{title: "Missing", want: []string{`"level":"debug"`, `"title":"Missing"`, `"message":"summary unavailable"`}},
		{title: "Broken", want: []string{`"level":"warn"`, `"error":"upstream down"`, `"message":"summary unavailable"`}},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			buf := captureLogs(t)

			_, ok := s.Enrich(context.Background(), Candidate{Title: tt.title}, Portuguese)
			assert.False(t, ok)

			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}
