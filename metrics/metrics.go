// Copyright 2025 The HistoriaViva Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequests counts Wikipedia calls by source and outcome (ok, error).
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "historiaviva_upstream_requests_total",
			Help: "Total number of Wikipedia API requests",
		},
		[]string{"source", "outcome"},
	)

	// UpstreamDuration observes Wikipedia call latency by source.
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "historiaviva_upstream_request_duration_seconds",
			Help:    "Duration of Wikipedia API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// Discoveries counts which source answered a location query (geosearch, nearby, none).
	Discoveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "historiaviva_discoveries_total",
			Help: "Location history queries by answering source",
		},
		[]string{"source"},
	)

	// Enrichments counts candidate outcomes (accepted, rejected, failed).
	Enrichments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "historiaviva_enrichments_total",
			Help: "Candidate enrichment outcomes",
		},
		[]string{"outcome"},
	)

	// BreakerState is 0 closed, 1 half-open, 2 open.
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "historiaviva_circuit_breaker_state",
			Help: "Circuit breaker state per upstream source (0=closed, 1=half-open, 2=open)",
		},
		[]string{"source"},
	)
)
