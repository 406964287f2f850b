// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status         string          `json:"status"`
	StoreConnected bool            `json:"store_connected"`
	Upstreams      map[string]bool `json:"upstreams"`
	ChatClients    int             `json:"chat_clients"`
	HubRunning     bool            `json:"hub_running"`
	OIDCEnabled    bool            `json:"oidc_enabled"`
	Uptime         float64         `json:"uptime_seconds"`
}

// Health reports store connectivity and which lookup upstreams have
// credentials. A store failure makes the status "degraded" but still
// answers 200; use /health/ready for probes.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := HealthStatus{
		Status:         "healthy",
		StoreConnected: h.store.Ping(r.Context()) == nil,
		Upstreams:      map[string]bool{},
		OIDCEnabled:    h.oidc != nil,
		Uptime:         time.Since(h.started).Seconds(),
	}
	if !status.StoreConnected {
		status.Status = "degraded"
	}
	if h.lookup != nil {
		status.Upstreams = h.lookup.Upstreams()
	}
	if h.hub != nil {
		status.HubRunning = h.hub.Running()
		status.ChatClients = h.hub.ClientCount()
	}
	respondSuccess(w, http.StatusOK, status, start, false)
}

// HealthLive answers 200 while the process runs.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"alive":          true,
		"uptime_seconds": time.Since(h.started).Seconds(),
	}, time.Now(), false)
}

// HealthReady answers 503 until the store is usable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := h.store.Ping(r.Context()); err != nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeServiceUnavailable, "Store is not ready", err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]bool{"ready": true}, start, false)
}
