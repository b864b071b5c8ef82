// Copyright 2025 The HistoriaViva Authors
// SPDX-License-Identifier: Apache-2.0

// Package httputils provides http.RoundTripper decorators for upstream clients.
package httputils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

/////////////////////////////////////////
/// RountTrippers

// LoggingRoundTripper logs every HTTP transaction at debug level. At trace
// level it also logs an excerpt of the response body.
type LoggingRoundTripper struct {
	Transport http.RoundTripper
	Logger    *zerolog.Logger

	// MaxBody caps the body excerpt logged at trace level.
	MaxBody int
}

const defaultMaxBody = 512

// excerpt reads the whole body, restores it on resp and returns at most n bytes of it.
func excerpt(resp *http.Response, n int) (string, error) {
	if resp.Body == nil {
		return "", nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	if err := resp.Body.Close(); err != nil {
		return "", fmt.Errorf("closing response body: %w", err)
	}

	resp.Body = io.NopCloser(bytes.NewReader(body))

	if len(body) > n {
		return string(body[:n]) + "…", nil
	}

	return string(body), nil
}

// RoundTrip implements the http.RoundTripper interface.
func (t *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Logger == nil || t.Logger.GetLevel() > zerolog.DebugLevel || zerolog.GlobalLevel() > zerolog.DebugLevel {
		return t.Transport.RoundTrip(req)
	}

	start := time.Now()

	resp, err := t.Transport.RoundTrip(req)
	if err != nil {
		t.Logger.Debug().
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Dur("duration", time.Since(start)).
			Err(err).
			Msg("upstream request failed")

		return nil, err
	}

	t.Logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("upstream request")

	if e := t.Logger.Trace(); e.Enabled() {
		maxBody := t.MaxBody
		if maxBody <= 0 {
			maxBody = defaultMaxBody
		}

		body, err := excerpt(resp, maxBody)
		if err != nil {
			return nil, err
		}

		e.Str("url", req.URL.String()).Str("body", body).Msg("upstream response body")
	}

	return resp, nil
}

// AppendRequestHeadersRoundTripper adds headers to the request.
type AppendRequestHeadersRoundTripper struct {
	Transport http.RoundTripper
	Headers   map[string]string
}

// RoundTrip implements the http.RoundTripper interface.
func (t *AppendRequestHeadersRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.Headers {
		req.Header.Set(k, v)
	}

	return t.Transport.RoundTrip(req)
}

// RateLimitRoundTripper waits for a token from Limiter before each request.
// A nil Limiter disables limiting.
type RateLimitRoundTripper struct {
	Transport http.RoundTripper
	Limiter   *rate.Limiter
}

// RoundTrip implements the http.RoundTripper interface.
func (t *RateLimitRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	return t.Transport.RoundTrip(req)
}

// TimeoutRoundTripper bounds each request, including reading its body, by
// Timeout. The clock starts when RoundTrip is called, so wrapping it with a
// RateLimitRoundTripper keeps the limiter wait out of the budget.
type TimeoutRoundTripper struct {
	Transport http.RoundTripper
	Timeout   time.Duration
}

// RoundTrip implements the http.RoundTripper interface.
func (t *TimeoutRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Timeout <= 0 {
		return t.Transport.RoundTrip(req)
	}

	ctx, cancel := context.WithTimeout(req.Context(), t.Timeout)

	resp, err := t.Transport.RoundTrip(req.WithContext(ctx))
	if err != nil {
		cancel()

		return nil, err
	}

	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}

	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()

	return err
}
