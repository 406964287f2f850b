// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package lookup

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pantry/internal/config"
	"github.com/tomtom215/pantry/internal/metrics"
	"github.com/tomtom215/pantry/internal/models"
)

// ChatUpstream is the upstream name used in logs and metrics.
const ChatUpstream = "chat"

const (
	sseDataPrefix = "data:"
	sseDone       = "[DONE]"

	// maxSSELine bounds one server-sent event line.
	maxSSELine = 1 << 20
)

// ErrStreamIncomplete is returned when the stream ends without [DONE].
var ErrStreamIncomplete = errors.New("chat stream ended before completion")

// ChatClient streams chat completions from an OpenAI-compatible endpoint.
type ChatClient struct {
	up    *upstream
	model string
}

// NewChatClient creates the chat client.
func NewChatClient(cfg *config.ChatConfig, httpClient *http.Client, bs BreakerSettings) *ChatClient {
	return &ChatClient{
		up: newUpstream(ChatUpstream, config.UpstreamConfig{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
		}, httpClient, bs),
		model: cfg.Model,
	}
}

// Configured reports whether an API key is set.
func (c *ChatClient) Configured() bool {
	return c != nil && c.up.configured()
}

type chatRequest struct {
	Model    string               `json:"model"`
	Messages []models.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Stream sends messages and calls onChunk for every non-empty content delta
// until the upstream sends [DONE]. An error from onChunk stops the stream and
// is returned as is. It returns the number of chunks delivered.
func (c *ChatClient) Stream(ctx context.Context, messages []models.ChatMessage, onChunk func(string) error) (int, error) {
	if !c.Configured() {
		return 0, ErrNotConfigured
	}

	// A failing consumer is not an upstream failure.
	var sinkErr error
	sink := func(s string) error {
		sinkErr = onChunk(s)
		return sinkErr
	}

	chunks := 0
	_, err := call(ctx, c.up, "stream", func() (*struct{}, error) {
		resp, err := c.open(ctx, messages)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		chunks, err = readSSE(resp.Body, sink)
		if sinkErr != nil {
			return &struct{}{}, nil
		}
		return &struct{}{}, err
	})
	if err == nil && sinkErr != nil {
		err = sinkErr
	}

	result := "success"
	switch {
	case errors.Is(err, context.Canceled):
		result = "canceled"
	case err != nil:
		result = "error"
	}
	metrics.RecordChatStream(result, chunks)
	return chunks, err
}

func (c *ChatClient) open(ctx context.Context, messages []models.ChatMessage) (*http.Response, error) {
	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages, Stream: true})
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.up.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+c.up.apiKey)

	return c.up.do(req)
}

// readSSE parses "data:" lines of a server-sent event stream. Other fields
// and comments are ignored.
func readSSE(r io.Reader, onChunk func(string) error) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELine)

	chunks := 0
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, sseDataPrefix) {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, sseDataPrefix))
		if data == "" {
			continue
		}
		if data == sseDone {
			return chunks, nil
		}

		var chunk chatChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return chunks, fmt.Errorf("failed to decode chat chunk: %w", err)
		}
		if chunk.Error != nil {
			return chunks, fmt.Errorf("chat upstream error: %s", chunk.Error.Message)
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			if err := onChunk(choice.Delta.Content); err != nil {
				return chunks, err
			}
			chunks++
		}
	}
	if err := scanner.Err(); err != nil {
		return chunks, fmt.Errorf("failed to read chat stream: %w", err)
	}
	return chunks, ErrStreamIncomplete
}
