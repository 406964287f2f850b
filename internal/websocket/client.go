// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package websocket

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/lookup"
	"github.com/tomtom215/pantry/internal/metrics"
	"github.com/tomtom215/pantry/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 64
)

var clientIDCounter atomic.Uint64

// Chatter streams a chat completion. lookup.Service implements it.
type Chatter interface {
	Chat(ctx context.Context, messages []models.ChatMessage, onChunk func(string) error) (int, error)
}

// Client is one chat session on a WebSocket connection.
type Client struct {
	id     uint64
	userID string
	hub    *Hub
	conn   *websocket.Conn
	chat   Chatter
	send   chan Message
	busy   atomic.Bool
	log    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewClient creates a session for an upgraded connection. The session ends
// when ctx is canceled, the peer goes away or the hub shuts down.
func NewClient(ctx context.Context, hub *Hub, conn *websocket.Conn, chat Chatter, userID string) *Client {
	ctx, cancel := context.WithCancel(ctx)
	id := clientIDCounter.Add(1)
	return &Client{
		id:     id,
		userID: userID,
		hub:    hub,
		conn:   conn,
		chat:   chat,
		send:   make(chan Message, sendBuffer),
		log:    logging.WithComponent("chat").With().Uint64("client_id", id).Str("user_id", logging.MaskID(userID)).Logger(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ID returns the client's unique identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// Start registers the client with the hub and starts both pumps.
func (c *Client) Start() {
	if !c.hub.register(c) {
		c.cancel()
		_ = c.conn.Close()
		return
	}
	metrics.WSConnections.Inc()
	go c.writePump()
	go c.readPump()
}

// Done is closed when the session has ended.
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// enqueue hands msg to the write pump, waiting while the buffer is full.
func (c *Client) enqueue(msg Message) error {
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
}

// offer hands msg to the write pump without waiting. It reports false when
// the buffer is full.
func (c *Client) offer(msg Message) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.cancel()
		_ = c.conn.Close()
		metrics.WSConnections.Dec()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var in Inbound
		if err := c.conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Msg("unexpected websocket close error")
				metrics.WSErrors.WithLabelValues("read").Inc()
			}
			return
		}
		metrics.WSMessagesReceived.Inc()
		c.handle(&in)
	}
}

func (c *Client) handle(in *Inbound) {
	switch in.Type {
	case MessageTypePing:
		c.offer(Message{Type: MessageTypePong})
	case MessageTypePrompt:
		if err := validatePrompt(in.Messages); err != nil {
			c.offer(Message{Type: MessageTypeError, Data: err.Error()})
			return
		}
		if !c.busy.CompareAndSwap(false, true) {
			c.offer(Message{Type: MessageTypeError, Data: "a prompt is already running"})
			return
		}
		go c.runPrompt(in.Messages)
	default:
		c.offer(Message{Type: MessageTypeError, Data: "unknown message type"})
	}
}

func (c *Client) runPrompt(messages []models.ChatMessage) {
	start := time.Now()
	chunks, err := c.chat.Chat(c.ctx, messages, func(s string) error {
		return c.enqueue(Message{Type: MessageTypeChunk, Data: s})
	})
	// Released before the final frame so a prompt sent right after "done"
	// is accepted.
	c.busy.Store(false)
	if c.ctx.Err() != nil {
		return
	}
	if err != nil {
		c.log.Warn().Err(err).Int("chunks", chunks).Msg("chat prompt failed")
		_ = c.enqueue(Message{Type: MessageTypeError, Data: userFacingError(err)})
		return
	}
	c.log.Debug().Int("chunks", chunks).Dur("duration", time.Since(start)).Msg("chat prompt completed")
	_ = c.enqueue(Message{Type: MessageTypeDone})
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
			return

		case msg := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.Error().Err(err).Msg("failed to set write deadline")
				c.cancel()
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.log.Debug().Err(err).Msg("failed to write JSON message")
				metrics.WSErrors.WithLabelValues("write").Inc()
				c.cancel()
				return
			}
			metrics.WSMessagesSent.Inc()

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.cancel()
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.cancel()
				return
			}
		}
	}
}

const maxPromptMessages = 50

var errEmptyPrompt = errors.New("prompt needs at least one message")

func validatePrompt(messages []models.ChatMessage) error {
	if len(messages) == 0 {
		return errEmptyPrompt
	}
	if len(messages) > maxPromptMessages {
		return errors.New("too many messages in prompt")
	}
	for _, m := range messages {
		switch m.Role {
		case "system", "user", "assistant":
		default:
			return errors.New("message role must be system, user or assistant")
		}
		if m.Content == "" {
			return errors.New("message content is required")
		}
	}
	return nil
}

// userFacingError hides upstream details from the browser.
func userFacingError(err error) string {
	switch {
	case errors.Is(err, lookup.ErrNotConfigured):
		return "the assistant is not configured on this server"
	case errors.Is(err, context.DeadlineExceeded):
		return "the assistant took too long to answer"
	default:
		return "the assistant is unavailable, try again later"
	}
}
