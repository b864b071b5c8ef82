// Copyright 2025 The HistoriaViva Authors
// SPDX-License-Identifier: Apache-2.0

// Package api holds the HTTP contract shared by every deployment target:
// paths, response bodies, error messages and the CORS policy.
package api

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/jcodagnone/historiaviva/history"
)

// Endpoint paths.
const (
	LocationHistoryPath = "/api/location-history"
	TodayInHistoryPath  = "/api/today-in-history"
)

// Error messages returned to clients.
const (
	MsgCoordinatesRequired   = "Latitude and longitude are required"
	MsgLocationHistoryFailed = "Failed to fetch location history"
	MsgTodayInHistoryFailed  = "Failed to fetch today in history"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// LocationHistoryResponse is the body of a successful location history query.
type LocationHistoryResponse struct {
	History []history.LocationRecord `json:"history"`
}

// NewLocationHistoryResponse wraps records, never producing a null history.
func NewLocationHistoryResponse(records []history.LocationRecord) LocationHistoryResponse {
	if records == nil {
		records = []history.LocationRecord{}
	}

	return LocationHistoryResponse{History: records}
}

// NewCORS returns the CORS policy: any origin, GET and OPTIONS. Preflight
// requests are passed through so the OPTIONS handlers answer them.
func NewCORS() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept", "Accept-Version", "Content-Length", "Content-MD5", "Content-Type",
			"Date", "X-Api-Version", "X-CSRF-Token", "X-Requested-With", RequestIDHeader,
		},
		ExposedHeaders:     []string{RequestIDHeader},
		OptionsPassthrough: true,
		MaxAge:             86400,
	})
}

// RequestID returns the incoming request id or a new one.
func RequestID(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); id != "" && len(id) <= 128 {
		return id
	}

	return uuid.New().String()
}
