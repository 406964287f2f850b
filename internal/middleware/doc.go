// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

/*
Package middleware provides the infrastructure HTTP middleware of the API.

Key Components:

  - RequestID: accepts or generates X-Request-ID and seeds the logging
    context with request and correlation ids
  - PrometheusMetrics: request count, latency and in-flight gauge labelled
    by chi route pattern
  - RequestLogger: one structured access log line per request, at warn
    level above the slow-request threshold

All three are plain func(http.Handler) http.Handler and are mounted with
chi's r.Use. Response writers are wrapped with chi's WrapResponseWriter, so
WebSocket upgrades (http.Hijacker) and SSE flushing keep working.

Order used by the router:

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(time.Second))
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
