// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/pantry/internal/config"
	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/metrics"
)

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 512

// maxResponseBody caps decoded upstream responses.
const maxResponseBody = 8 << 20

// upstream is the shared HTTP plumbing of one third-party API.
type upstream struct {
	name       string
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[interface{}]
}

func newUpstream(name string, cfg config.UpstreamConfig, httpClient *http.Client, bs BreakerSettings) *upstream {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &upstream{
		name:       name,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		cb:         newBreaker(name, bs),
	}
}

func (u *upstream) configured() bool {
	return u != nil && u.apiKey != ""
}

// do waits for the limiter, sends req and returns the response when the
// status is 2xx. Other statuses become an *UpstreamError.
func (u *upstream) do(req *http.Request) (*http.Response, error) {
	if err := u.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("%s rate limit wait: %w", u.name, err)
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = redactURL(urlErr.URL)
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &UpstreamError{Upstream: u.name, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return resp, nil
}

// getJSON sends GET {baseURL}{path}?{query} and decodes the body into out.
func (u *upstream) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := u.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := u.do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", u.name, err)
	}
	return nil
}

// call runs fn behind the breaker and records the lookup metrics.
func call[T any](ctx context.Context, u *upstream, op string, fn func() (*T, error)) (*T, error) {
	start := time.Now()
	out, err := execute(u.cb, fn)

	result := "success"
	switch {
	case errors.Is(err, ErrNoMatch):
		result = "no_match"
	case err != nil:
		result = "error"
		logging.Ctx(ctx).Warn().Err(err).Str("upstream", u.name).Str("op", op).Msg("Lookup failed")
	}
	metrics.RecordLookup(u.name, result, time.Since(start))
	return out, err
}

// secretParams are query parameters that carry API keys.
var secretParams = []string{"api_key", "apiKey", "key"}

// redactURL blanks API keys so transport errors can be logged.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "[unparseable url]"
	}
	q := u.Query()
	changed := false
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}
