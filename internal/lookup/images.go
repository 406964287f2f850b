// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package lookup

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tomtom215/pantry/internal/config"
	"github.com/tomtom215/pantry/internal/models"
)

// ImageSearchClient queries a Custom Search compatible image API.
type ImageSearchClient struct {
	up       *upstream
	engineID string
}

// NewImageSearchClient creates the image search client.
func NewImageSearchClient(cfg config.ImageSearchConfig, httpClient *http.Client, bs BreakerSettings) *ImageSearchClient {
	return &ImageSearchClient{
		up:       newUpstream(models.SourceImageSearch, cfg.Upstream(), httpClient, bs),
		engineID: cfg.EngineID,
	}
}

// Configured reports whether an API key and engine id are set.
func (c *ImageSearchClient) Configured() bool {
	return c != nil && c.up.configured() && c.engineID != ""
}

type imageSearchResponse struct {
	Items []struct {
		Title string `json:"title"`
		Link  string `json:"link"`
		Image struct {
			ThumbnailLink string `json:"thumbnailLink"`
		} `json:"image"`
	} `json:"items"`
}

// Search returns the first image result for query.
func (c *ImageSearchClient) Search(ctx context.Context, query string) (*models.ImageResult, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	return call(ctx, c.up, "search", func() (*models.ImageResult, error) {
		q := url.Values{}
		q.Set("q", query)
		q.Set("key", c.up.apiKey)
		q.Set("cx", c.engineID)
		q.Set("searchType", "image")
		q.Set("num", "1")

		var resp imageSearchResponse
		if err := c.up.getJSON(ctx, "", q, &resp); err != nil {
			return nil, err
		}
		if len(resp.Items) == 0 || resp.Items[0].Link == "" {
			return nil, ErrNoMatch
		}
		item := resp.Items[0]
		return &models.ImageResult{
			Query:        query,
			URL:          item.Link,
			ThumbnailURL: item.Image.ThumbnailLink,
			Title:        item.Title,
			Source:       models.SourceImageSearch,
		}, nil
	})
}
