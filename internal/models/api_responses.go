// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package models

import (
	"time"
)

// APIResponse is the envelope every JSON endpoint returns.
//
// Status field values:
//   - "success": the request completed, see Data
//   - "error": the request failed, see Error
//
// Example successful response (GET /api/v1/explore?include=vegan):
//
//	{
//	  "status": "success",
//	  "data": {
//	    "state": "loaded",
//	    "recipes": [{"id": "...", "name": "Veggie Chili", ...}],
//	    "tags": [{"name": "vegan", "state": "include"}],
//	    "total": 12,
//	    "empty": false
//	  },
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "query_time_ms": 3, "cached": true}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "steps must be at most 100 items",
//	    "details": {"fields": {"steps": "steps must be at most 100 items"}}
//	  },
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
//	}
//
// explorer.HTTPFetcher accepts this envelope as well as a bare
// {"recipes": [...]} payload.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries timing and caching information for a response.
//
// Fields:
//   - Timestamp: server time when the response was built
//   - QueryTimeMS: handler time in milliseconds, omitted when 0
//   - Cached: true when the catalog snapshot or a lookup result came from a
//     cache rather than the store or an upstream
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError describes a failed request.
//
// Codes:
//   - VALIDATION_ERROR: invalid input
//   - UNAUTHORIZED: missing or invalid session
//   - FORBIDDEN: authenticated but not allowed
//   - NOT_FOUND: resource does not exist
//   - CONFLICT: e.g. email already registered
//   - UPSTREAM_ERROR: a third-party lookup failed
//   - SERVICE_UNAVAILABLE: a lookup upstream is not configured
//   - RATE_LIMIT_EXCEEDED: too many requests
//   - INTERNAL_ERROR: anything else
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
