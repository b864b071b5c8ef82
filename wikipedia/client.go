// Copyright 2025 The HistoriaViva Authors
// SPDX-License-Identifier: Apache-2.0

// Package wikipedia is a small client for the Wikipedia REST and MediaWiki
// action APIs used to find pages near a coordinate.
package wikipedia

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/jcodagnone/historiaviva/logging"
	"github.com/jcodagnone/historiaviva/metrics"
	"github.com/jcodagnone/historiaviva/utils/httputils"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the base URL template; {lang} is replaced by the language edition.
const DefaultBaseURL = "https://{lang}.wikipedia.org"

const maxBodySize = 4 << 20

// ClientOptions configuration for Client.
type ClientOptions struct {
	// BaseURL is the URL template of the wikis, see DefaultBaseURL.
	BaseURL string

	// UserAgent is the client identifier sent on every request
	UserAgent string

	// Timeout bounds every single upstream call
	Timeout time.Duration

	// RateLimit is the number of requests per second across all sources; 0 disables it
	RateLimit float64

	// Burst of the rate limiter
	Burst int

	// BreakerCooldown is how long a source stays marked unhealthy before
	// being probed again
	BreakerCooldown time.Duration

	// Trace logs every upstream exchange
	Trace bool

	// Transport overrides the base transport, mostly for tests
	Transport http.RoundTripper
}

// Client talks to Wikipedia. It is safe for concurrent use.
type Client struct {
	baseURL  string
	client   *http.Client
	breakers map[Source]*healthBreaker
}

// NewClient creates a new client with the provided options.
func NewClient(options *ClientOptions) *Client {
	if options == nil {
		options = &ClientOptions{}
	}

	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	transport := options.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          20,
			MaxIdleConnsPerHost:   8,
			IdleConnTimeout:       30 * time.Second,
		}
	}

	if options.Trace {
		logger := logging.Logger().With().Str("component", "wikipedia").Logger()
		transport = &httputils.LoggingRoundTripper{
			Transport: transport,
			Logger:    &logger,
		}
	}

	var limiter *rate.Limiter
	if options.RateLimit > 0 {
		burst := options.Burst
		if burst <= 0 {
			burst = 1
		}

		limiter = rate.NewLimiter(rate.Limit(options.RateLimit), burst)
	}

	timeoutTransport := &httputils.TimeoutRoundTripper{
		Transport: transport,
		Timeout:   timeout,
	}

	rateTransport := &httputils.RateLimitRoundTripper{
		Transport: timeoutTransport,
		Limiter:   limiter,
	}

	userAgent := "historiaviva/unknown"
	if options.UserAgent != "" {
		userAgent = options.UserAgent
	}

	headerTransport := &httputils.AppendRequestHeadersRoundTripper{
		Headers: map[string]string{
			"User-Agent":     userAgent,
			"Api-User-Agent": userAgent,
			"Accept":         "application/json",
		},
		Transport: rateTransport,
	}

	breakers := make(map[Source]*healthBreaker)
	for _, source := range []Source{SourceGeoSearch, SourceNearby, SourceSummary, SourceOnThisDay} {
		breakers[source] = newBreaker(source, options.BreakerCooldown)
	}

	return &Client{
		baseURL:  baseURL,
		breakers: breakers,
		client: &http.Client{
			Transport: headerTransport,
		},
	}
}

func (c *Client) endpoint(lang, path string, query url.Values) string {
	u := strings.ReplaceAll(c.baseURL, "{lang}", url.PathEscape(lang)) + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	return u
}

// get fetches one resource and returns its body. The per call timeout
// starts once the rate limiter lets the request out.
func (c *Client) get(ctx context.Context, source Source, reqURL string) ([]byte, error) {
	start := time.Now()

	body, tracked, err := c.breakers[source].track(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s request failed: %w", source, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			// drain so the connection can be reused
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))

			return nil, &StatusError{Source: source, StatusCode: resp.StatusCode, URL: reqURL}
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return nil, fmt.Errorf("reading %s response: %w", source, err)
		}

		return body, nil
	})

	metrics.UpstreamDuration.WithLabelValues(string(source)).Observe(time.Since(start).Seconds())

	if !tracked {
		logging.Ctx(ctx).Debug().Str("source", string(source)).Msg("upstream marked unhealthy, call not tracked")
	}

	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(string(source), "error").Inc()

		return nil, err
	}

	metrics.UpstreamRequests.WithLabelValues(string(source), "ok").Inc()

	return body, nil
}

func decode(source Source, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: decoding %s: %w", ErrMalformedResponse, source, err)
	}

	return nil
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
