// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/pantry/internal/config"
	"github.com/tomtom215/pantry/internal/metrics"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestChiMiddlewareConfigFromSecurity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		origins     []string
		credentials bool
	}{
		{"explicit origins", []string{"https://a.example"}, true},
		{"wildcard", []string{"*"}, false},
		{"none", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := ChiMiddlewareConfigFromSecurity(&config.SecurityConfig{
				CORSOrigins:     tt.origins,
				RateLimitReqs:   7,
				RateLimitWindow: time.Second,
			})
			if cfg.CORSAllowCredentials != tt.credentials {
				t.Errorf("AllowCredentials = %v, want %v", cfg.CORSAllowCredentials, tt.credentials)
			}
			if cfg.RateLimitRequests != 7 || cfg.RateLimitWindow != time.Second {
				t.Errorf("rate limit = %d/%s", cfg.RateLimitRequests, cfg.RateLimitWindow)
			}
		})
	}
}

func TestRateLimit_Rejects(t *testing.T) {
	cfg := DefaultChiMiddlewareConfig()
	m := NewChiMiddleware(cfg)
	h := m.RateLimitCustom(RateLimitConfig{Requests: 2, Window: time.Minute})(okHandler())

	before := testutil.ToFloat64(metrics.APIRateLimitHits.WithLabelValues("unmatched"))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil)
		req.RemoteAddr = "192.0.2.10:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			expectError(t, rec, http.StatusTooManyRequests, CodeRateLimited)
		}
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want 200,200,429", codes)
	}
	if got := testutil.ToFloat64(metrics.APIRateLimitHits.WithLabelValues("unmatched")); got != before+1 {
		t.Errorf("rate limit hits = %v, want %v", got, before+1)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	t.Parallel()
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitDisabled = true
	h := NewChiMiddleware(cfg).RateLimitCustom(RateLimitConfig{Requests: 1, Window: time.Minute})(okHandler())

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
}

func TestAPISecurityHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  func() *http.Request
		hsts bool
	}{
		{"plain http", func() *http.Request { return httptest.NewRequest(http.MethodGet, "/", nil) }, false},
		{"behind tls proxy", func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("X-Forwarded-Proto", "https")
			return r
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			APISecurityHeaders()(okHandler()).ServeHTTP(rec, tt.req())

			if rec.Header().Get("X-Content-Type-Options") != "nosniff" || rec.Header().Get("X-Frame-Options") != "DENY" {
				t.Errorf("headers = %v", rec.Header())
			}
			if got := rec.Header().Get("Strict-Transport-Security") != ""; got != tt.hsts {
				t.Errorf("HSTS present = %v, want %v", got, tt.hsts)
			}
		})
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/me/shopping/abc", nil)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != testOrigin {
		t.Errorf("Allow-Origin = %q, want %q", got, testOrigin)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q, want true", got)
	}
}
