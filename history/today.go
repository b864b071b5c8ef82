// Copyright 2025 The HistoriaViva Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"

	"github.com/jcodagnone/historiaviva/logging"
	"github.com/jcodagnone/historiaviva/wikipedia"
)

const (
	maxEvents = 10
	maxBirths = 8
)

// EventPage is a page linked from an event.
type EventPage struct {
	Title   string `json:"title"`
	Extract string `json:"extract,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Event is something that happened, or someone born, on a given day.
type Event struct {
	Year  int         `json:"year"`
	Text  string      `json:"text"`
	Pages []EventPage `json:"pages,omitempty"`
}

// Today holds the events and births of one calendar day.
type Today struct {
	Events []Event `json:"events"`
	Births []Event `json:"births"`
}

// TodayInHistory returns the events and births of the current UTC day. Upstream
// failures yield empty lists.
func (s *Service) TodayInHistory(ctx context.Context, lang Language) Today {
	now := s.now().UTC()
	today := Today{Events: []Event{}, Births: []Event{}}

	feed, err := s.wiki.OnThisDay(ctx, string(lang), int(now.Month()), now.Day())
	if err != nil || feed == nil {
		logging.Ctx(ctx).Warn().Err(err).Str("lang", string(lang)).Msg("on this day feed unavailable")

		return today
	}

	today.Events = project(feed.Events, maxEvents)
	today.Births = project(feed.Births, maxBirths)

	return today
}

func project(entries []wikipedia.OnThisDayEntry, limit int) []Event {
	events := make([]Event, 0, min(len(entries), limit))

	for _, entry := range entries[:min(len(entries), limit)] {
		event := Event{Year: entry.Year, Text: entry.Text}
		for _, page := range entry.Pages {
			event.Pages = append(event.Pages, EventPage{
				Title:   page.Title,
				Extract: page.Extract,
				URL:     page.ContentURLs.Desktop.Page,
			})
		}

		events = append(events, event)
	}

	return events
}
