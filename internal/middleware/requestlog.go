// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package middleware

import (
	"net/http"
	"time"

	"github.com/tomtom215/pantry/internal/logging"
)

// RequestLogger writes one access log line per request. Requests slower
// than slow are logged at warn level, server errors at error level and the
// rest at debug level.
func RequestLogger(slow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := wrap(w, r)
			next.ServeHTTP(ww, r)
			duration := time.Since(start)

			status := statusOf(ww)
			log := logging.Ctx(r.Context())
			e := log.Debug()
			switch {
			case status >= http.StatusInternalServerError:
				e = log.Error()
			case slow > 0 && duration > slow:
				e = log.Warn().Dur("threshold", slow)
			}
			e.Str("method", r.Method).
				Str("route", routePattern(r)).
				Str("path", logging.SanitizeValue(r.URL.Path)).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", duration).
				Str("remote_addr", r.RemoteAddr).
				Msg("HTTP request")
		})
	}
}
