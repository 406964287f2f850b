// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package lookup

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotConfigured is returned when the upstream a call needs has no API key.
	ErrNotConfigured = errors.New("lookup upstream not configured")

	// ErrNoMatch is returned when the upstream answered but found nothing.
	ErrNoMatch = errors.New("no match found")

	// ErrEmptyQuery is returned for a blank ingredient or search query.
	ErrEmptyQuery = errors.New("query is required")
)

// UpstreamError is a non-2xx response from an upstream API.
type UpstreamError struct {
	Upstream   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Upstream, e.StatusCode, e.Body)
}

// clientFault reports whether the upstream blamed the request rather than
// itself. Those responses do not count against the circuit breaker.
func (e *UpstreamError) clientFault() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusTooManyRequests
}
