// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/pantry/internal/models"
	ws "github.com/tomtom215/pantry/internal/websocket"
)

func TestCheckWebSocketOrigin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"listed origin", []string{testOrigin}, testOrigin, true},
		{"other origin", []string{testOrigin}, "https://evil.example", false},
		{"missing origin", []string{testOrigin}, "", false},
		{"wildcard", []string{"*"}, "https://anything.example", true},
		{"wildcard still needs origin", []string{"*"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig()
			cfg.Security.CORSOrigins = tt.allowed
			h := &Handler{cfg: cfg}

			req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := h.checkWebSocketOrigin(req); got != tt.want {
				t.Errorf("checkWebSocketOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChat_Unavailable(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t) // no hub

	chef := env.signUp("chef@example.com")
	expectError(t, env.do(http.MethodGet, "/api/v1/chat/ws", chef, nil), http.StatusServiceUnavailable, CodeServiceUnavailable)
}

func TestChat_AnonymousForbidden(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	expectError(t, env.do(http.MethodGet, "/api/v1/chat/ws", env.anonymous(), nil), http.StatusForbidden, CodeForbidden)
}

func TestChat_RoundTrip(t *testing.T) {
	t.Parallel()

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = hub.RunWithContext(ctx) }()
	deadline := time.Now().Add(2 * time.Second)
	for !hub.Running() {
		if time.Now().After(deadline) {
			t.Fatal("hub did not start")
		}
		time.Sleep(5 * time.Millisecond)
	}

	env := newTestEnv(t, func(d *Dependencies) { d.Hub = hub })
	chef := env.signUp("chef@example.com")

	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	header := http.Header{}
	header.Set("Origin", testOrigin)
	header.Set("Authorization", "Bearer "+chef)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/chat/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("Dial() error = %v (resp %+v)", err, resp)
	}
	defer conn.Close()

	if err := conn.WriteJSON(ws.Inbound{
		Type:     ws.MessageTypePrompt,
		Messages: []models.ChatMessage{{Role: "user", Content: "What goes with basil?"}},
	}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var got []string
	for {
		var msg ws.Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON() error = %v after %v", err, got)
		}
		got = append(got, msg.Type)
		if msg.Type == ws.MessageTypeDone || msg.Type == ws.MessageTypeError {
			break
		}
	}
	if strings.Join(got, ",") != "chunk,done" {
		t.Errorf("frames = %v, want chunk,done", got)
	}
}
