// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/pantry/internal/logging"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful shutdown path.
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline may indicate a hung operation during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Hub tracks the open chat sessions.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	running bool

	registerCh   chan *Client
	unregisterCh chan *Client
	broadcast    chan Message
	stopped      chan struct{} // closed while the hub is not serving after a run
	closed       bool
}

// NewHub creates a Hub. Sessions can register only while RunWithContext runs.
func NewHub() *Hub {
	return &Hub{
		clients:      make(map[*Client]struct{}),
		registerCh:   make(chan *Client),
		unregisterCh: make(chan *Client),
		broadcast:    make(chan Message, 256),
		stopped:      make(chan struct{}),
	}
}

// RunWithContext serves registrations and broadcasts until ctx is canceled,
// then closes every session. It is meant to run under the supervisor.
//
// Lifecycle events are drained before broadcasts so a notice never reaches a
// session that already left.
func (h *Hub) RunWithContext(ctx context.Context) error {
	h.mu.Lock()
	h.running = true
	if h.closed {
		h.stopped = make(chan struct{})
		h.closed = false
	}
	h.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case c := <-h.registerCh:
			h.add(c)
			continue
		case c := <-h.unregisterCh:
			h.remove(c)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case c := <-h.registerCh:
			h.add(c)
		case c := <-h.unregisterCh:
			h.remove(c)
		case msg := <-h.broadcast:
			h.broadcastToClients(msg)
		}
	}
}

func (h *Hub) register(c *Client) bool {
	select {
	case h.registerCh <- c:
		return true
	case <-h.stoppedCh():
		return false
	case <-c.ctx.Done():
		return false
	}
}

func (h *Hub) unregister(c *Client) {
	select {
	case h.unregisterCh <- c:
	case <-h.stoppedCh():
	}
}

func (h *Hub) stoppedCh() <-chan struct{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stopped
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	logging.Debug().Uint64("client_id", c.id).Int("total_clients", n).Msg("chat session opened")
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		c.cancel()
		logging.Debug().Uint64("client_id", c.id).Int("total_clients", n).Msg("chat session closed")
	}
}

// Broadcast queues msg for every session. It never blocks; when the queue is
// full the message is dropped.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		logging.Warn().Str("type", msg.Type).Msg("websocket broadcast queue full, message dropped")
	}
}

// BroadcastCatalogChanged tells every session that a recipe changed.
func (h *Hub) BroadcastCatalogChanged(topic, recipeID string) {
	h.Broadcast(Message{Type: MessageTypeCatalogChanged, Data: CatalogNotice{Topic: topic, RecipeID: recipeID}})
}

// ClientCount returns the number of open sessions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Running reports whether RunWithContext is serving.
func (h *Hub) Running() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.running
}

// broadcastToClients delivers in client id order. A session whose buffer is
// full is closed rather than allowed to stall the others.
func (h *Hub) broadcastToClients(msg Message) {
	for _, c := range h.sortedClients() {
		if !c.offer(msg) {
			logging.Warn().Uint64("client_id", c.id).Msg("chat session too slow, closing")
			h.remove(c)
		}
	}
}

func (h *Hub) sortedClients() []*Client {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

func (h *Hub) shutdown(ctx context.Context) {
	clients := h.sortedClients()
	for _, c := range clients {
		h.remove(c)
	}

	h.mu.Lock()
	h.running = false
	if !h.closed {
		close(h.stopped)
		h.closed = true
	}
	h.mu.Unlock()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", len(clients)).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}
