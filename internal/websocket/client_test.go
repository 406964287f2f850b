// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/pantry/internal/lookup"
	"github.com/tomtom215/pantry/internal/models"
)

// fakeChat streams chunks, optionally waiting for release before finishing.
type fakeChat struct {
	mu       sync.Mutex
	chunks   []string
	err      error
	release  chan struct{}
	received [][]models.ChatMessage
}

func (f *fakeChat) Chat(ctx context.Context, messages []models.ChatMessage, onChunk func(string) error) (int, error) {
	f.mu.Lock()
	f.received = append(f.received, messages)
	chunks, err, release := f.chunks, f.err, f.release
	f.mu.Unlock()

	n := 0
	for _, c := range chunks {
		if err := onChunk(c); err != nil {
			return n, err
		}
		n++
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return n, ctx.Err()
		}
	}
	return n, err
}

// startChatServer runs a hub and an httptest server upgrading every request
// into a chat session.
func startChatServer(t *testing.T, chat Chatter) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		_ = hub.RunWithContext(ctx)
	}()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Failed to upgrade connection: %v", err)
			return
		}
		c := NewClient(context.Background(), hub, conn, chat, "user-123456789")
		c.Start()
		<-c.Done()
	}))
	t.Cleanup(func() {
		cancel()
		<-hubDone
		srv.Close()
	})
	return hub, srv
}

func dialWebSocket(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return msg
}

func sendPrompt(t *testing.T, conn *websocket.Conn, content string) {
	t.Helper()
	in := Inbound{Type: MessageTypePrompt, Messages: []models.ChatMessage{{Role: "user", Content: content}}}
	if err := conn.WriteJSON(in); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
}

func TestClient_PromptStreamsChunksThenDone(t *testing.T) {
	chat := &fakeChat{chunks: []string{"Boil ", "for ", "7 minutes."}}
	_, srv := startChatServer(t, chat)
	conn := dialWebSocket(t, srv)

	sendPrompt(t, conn, "egg?")

	var sb strings.Builder
	for {
		msg := readMessage(t, conn)
		if msg.Type == MessageTypeDone {
			break
		}
		if msg.Type != MessageTypeChunk {
			t.Fatalf("unexpected message %+v", msg)
		}
		sb.WriteString(msg.Data.(string))
	}
	if sb.String() != "Boil for 7 minutes." {
		t.Errorf("streamed %q", sb.String())
	}

	chat.mu.Lock()
	defer chat.mu.Unlock()
	if len(chat.received) != 1 || chat.received[0][0].Content != "egg?" {
		t.Errorf("chat received %+v", chat.received)
	}
}

func TestClient_PingPong(t *testing.T) {
	_, srv := startChatServer(t, &fakeChat{})
	conn := dialWebSocket(t, srv)

	if err := conn.WriteJSON(Inbound{Type: MessageTypePing}); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg.Type != MessageTypePong {
		t.Errorf("got %+v, want pong", msg)
	}
}

func TestClient_OnePromptAtATime(t *testing.T) {
	chat := &fakeChat{chunks: []string{"thinking"}, release: make(chan struct{})}
	_, srv := startChatServer(t, chat)
	conn := dialWebSocket(t, srv)

	sendPrompt(t, conn, "first")
	if msg := readMessage(t, conn); msg.Type != MessageTypeChunk {
		t.Fatalf("got %+v, want chunk", msg)
	}

	sendPrompt(t, conn, "second")
	msg := readMessage(t, conn)
	if msg.Type != MessageTypeError || !strings.Contains(msg.Data.(string), "already running") {
		t.Fatalf("got %+v, want busy error", msg)
	}

	close(chat.release)
	if msg := readMessage(t, conn); msg.Type != MessageTypeDone {
		t.Fatalf("got %+v, want done", msg)
	}

	// The session accepts a new prompt once the first finished.
	chat.mu.Lock()
	chat.release = nil
	chat.mu.Unlock()
	sendPrompt(t, conn, "third")
	if msg := readMessage(t, conn); msg.Type != MessageTypeChunk {
		t.Fatalf("got %+v, want chunk", msg)
	}
}

func TestClient_ErrorFrames(t *testing.T) {
	tests := []struct {
		name    string
		chatErr error
		send    interface{}
		want    string
	}{
		{
			name:    "not configured",
			chatErr: lookup.ErrNotConfigured,
			send:    Inbound{Type: MessageTypePrompt, Messages: []models.ChatMessage{{Role: "user", Content: "hi"}}},
			want:    "not configured",
		},
		{
			name:    "upstream failure hides details",
			chatErr: &lookup.UpstreamError{Upstream: "chat", StatusCode: 500, Body: "secret internals"},
			send:    Inbound{Type: MessageTypePrompt, Messages: []models.ChatMessage{{Role: "user", Content: "hi"}}},
			want:    "unavailable",
		},
		{
			name: "empty prompt",
			send: Inbound{Type: MessageTypePrompt},
			want: "at least one message",
		},
		{
			name: "bad role",
			send: Inbound{Type: MessageTypePrompt, Messages: []models.ChatMessage{{Role: "tool", Content: "x"}}},
			want: "role",
		},
		{
			name: "unknown type",
			send: map[string]string{"type": "dance"},
			want: "unknown message type",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, srv := startChatServer(t, &fakeChat{err: tt.chatErr})
			conn := dialWebSocket(t, srv)
			if err := conn.WriteJSON(tt.send); err != nil {
				t.Fatal(err)
			}
			msg := readMessage(t, conn)
			if msg.Type != MessageTypeError {
				t.Fatalf("got %+v, want error frame", msg)
			}
			text, _ := msg.Data.(string)
			if !strings.Contains(text, tt.want) {
				t.Errorf("error text %q does not contain %q", text, tt.want)
			}
			if strings.Contains(text, "secret") {
				t.Errorf("error text leaks upstream body: %q", text)
			}
		})
	}
}

func TestUserFacingError(t *testing.T) {
	t.Parallel()
	if got := userFacingError(context.DeadlineExceeded); !strings.Contains(got, "too long") {
		t.Errorf("deadline: %q", got)
	}
	if got := userFacingError(errors.New("x")); !strings.Contains(got, "unavailable") {
		t.Errorf("generic: %q", got)
	}
}

func TestConstants(t *testing.T) {
	t.Parallel()
	if pingPeriod >= pongWait {
		t.Errorf("pingPeriod %v must be shorter than pongWait %v", pingPeriod, pongWait)
	}
	if writeWait != 10*time.Second {
		t.Errorf("writeWait = %v", writeWait)
	}
}
