// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package explorer

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pantry/internal/models"
)

// maxPayloadSize bounds the catalog payload read by HTTPFetcher.
const maxPayloadSize = 32 << 20

// maxErrorBodySize bounds the body echoed into a non-200 error.
const maxErrorBodySize = 512

// HTTPFetcher returns a Fetcher that GETs url and decodes a {"recipes": [...]}
// payload. The payload may also be wrapped in the API envelope
// ({"status": ..., "data": {"recipes": [...]}}).
func HTTPFetcher(client *http.Client, url string) Fetcher {
	return httpFetcher(client, url, maxPayloadSize)
}

// httpFetcher is HTTPFetcher with a payload limit in bytes. A body longer
// than limit fails with ErrPayloadTooLarge.
func httpFetcher(client *http.Client, url string, limit int64) Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context) (*models.RecipeList, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		if int64(len(data)) > limit {
			return nil, fmt.Errorf("%w: more than %d bytes", ErrPayloadTooLarge, limit)
		}
		return DecodePayload(data)
	}
}

// DecodePayload decodes a bare {"recipes": [...]} payload or one wrapped in
// the API envelope.
func DecodePayload(data []byte) (*models.RecipeList, error) {
	var envelope struct {
		Status string           `json:"status"`
		Data   json.RawMessage  `json:"data"`
		Error  *models.APIError `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode recipe payload: %w", err)
	}
	if envelope.Status == "error" {
		if envelope.Error != nil {
			return nil, fmt.Errorf("recipe catalog error %s: %s", envelope.Error.Code, envelope.Error.Message)
		}
		return nil, fmt.Errorf("recipe catalog returned an error response")
	}
	if envelope.Status != "" && len(envelope.Data) > 0 {
		data = envelope.Data
	}

	var list models.RecipeList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to decode recipe payload: %w", err)
	}
	return &list, nil
}

// StaticFetcher returns a Fetcher that always yields recipes.
func StaticFetcher(recipes []models.Recipe) Fetcher {
	return func(context.Context) (*models.RecipeList, error) {
		return &models.RecipeList{Recipes: recipes}, nil
	}
}
