// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package websocket

import "github.com/tomtom215/pantry/internal/models"

// Message types for WebSocket communication
const (
	MessageTypePrompt         = "prompt"
	MessageTypePing           = "ping"
	MessageTypePong           = "pong"
	MessageTypeChunk          = "chunk"
	MessageTypeDone           = "done"
	MessageTypeError          = "error"
	MessageTypeCatalogChanged = "catalog_changed"
)

// Message is a frame sent to the client.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Inbound is a frame received from the client.
type Inbound struct {
	Type     string               `json:"type"`
	Messages []models.ChatMessage `json:"messages,omitempty"`
}

// CatalogNotice tells clients that the recipe catalog changed.
type CatalogNotice struct {
	Topic    string `json:"topic"`
	RecipeID string `json:"recipe_id"`
}
