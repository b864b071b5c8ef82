// Copyright 2025 The HistoriaViva Authors
// SPDX-License-Identifier: Apache-2.0

package wikipedia

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedResponse is returned when an upstream body cannot be decoded
// into the expected shape.
var ErrMalformedResponse = errors.New("malformed upstream response")

// StatusError is returned for non-2xx upstream responses.
type StatusError struct {
	Source     Source
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s returned status %d", e.Source, e.URL, e.StatusCode)
}

// APIError is the MediaWiki action API error object, sent with a 200 status.
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mediawiki error %s: %s", e.Code, e.Info)
}

// IsNotFound reports whether err is a 404 from upstream.
func IsNotFound(err error) bool {
	var statusErr *StatusError

	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

// countsAsSuccess reports whether err must not count towards tripping a
// breaker: 4xx other than 429, API errors and caller cancellation.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 &&
			statusErr.StatusCode != http.StatusTooManyRequests
	}

	var apiErr *APIError

	return errors.As(err, &apiErr)
}
