// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package lookup

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/pantry/internal/config"
	"github.com/tomtom215/pantry/internal/models"
)

// USDAClient queries USDA FoodData Central.
//
// API Reference: https://fdc.nal.usda.gov/api-guide
type USDAClient struct {
	up *upstream
}

// NewUSDAClient creates the FoodData Central client.
func NewUSDAClient(cfg config.UpstreamConfig, httpClient *http.Client, bs BreakerSettings) *USDAClient {
	return &USDAClient{up: newUpstream(models.SourceUSDA, cfg, httpClient, bs)}
}

// Configured reports whether an API key is set.
func (c *USDAClient) Configured() bool {
	return c != nil && c.up.configured()
}

type usdaSearchResponse struct {
	TotalHits int `json:"totalHits"`
	Foods     []struct {
		FdcID         int    `json:"fdcId"`
		Description   string `json:"description"`
		FoodNutrients []struct {
			NutrientName string  `json:"nutrientName"`
			UnitName     string  `json:"unitName"`
			Value        float64 `json:"value"`
		} `json:"foodNutrients"`
	} `json:"foods"`
}

// SearchFoods returns the nutrients of the best match for query. Amounts are
// per 100 g as reported by FoodData Central.
func (c *USDAClient) SearchFoods(ctx context.Context, query string) (*models.NutritionFacts, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	return call(ctx, c.up, "search_foods", func() (*models.NutritionFacts, error) {
		q := url.Values{}
		q.Set("query", query)
		q.Set("pageSize", "1")
		q.Set("api_key", c.up.apiKey)

		var resp usdaSearchResponse
		if err := c.up.getJSON(ctx, "/fdc/v1/foods/search", q, &resp); err != nil {
			return nil, err
		}
		if len(resp.Foods) == 0 {
			return nil, ErrNoMatch
		}

		food := resp.Foods[0]
		facts := &models.NutritionFacts{
			Ingredient:  query,
			Source:      models.SourceUSDA,
			FoodID:      strconv.Itoa(food.FdcID),
			Description: food.Description,
			Nutrients:   make([]models.Nutrient, 0, len(food.FoodNutrients)),
		}
		for _, n := range food.FoodNutrients {
			if n.NutrientName == "" {
				continue
			}
			facts.Nutrients = append(facts.Nutrients, models.Nutrient{
				Name:   n.NutrientName,
				Amount: n.Value,
				Unit:   strings.ToLower(n.UnitName),
			})
		}
		return facts, nil
	})
}
