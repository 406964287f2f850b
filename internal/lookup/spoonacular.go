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

// SpoonacularImageBase is where Spoonacular serves ingredient images.
const SpoonacularImageBase = "https://spoonacular.com/cdn/ingredients_500x500/"

// SpoonacularClient queries the Spoonacular food API.
//
// API Reference: https://spoonacular.com/food-api/docs
type SpoonacularClient struct {
	up *upstream
}

// NewSpoonacularClient creates the Spoonacular client.
func NewSpoonacularClient(cfg config.UpstreamConfig, httpClient *http.Client, bs BreakerSettings) *SpoonacularClient {
	return &SpoonacularClient{up: newUpstream(models.SourceSpoonacular, cfg, httpClient, bs)}
}

// Configured reports whether an API key is set.
func (c *SpoonacularClient) Configured() bool {
	return c != nil && c.up.configured()
}

// SpoonacularIngredient is one ingredient search hit.
type SpoonacularIngredient struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// ImageURL returns the full URL of the ingredient image, or "".
func (i *SpoonacularIngredient) ImageURL() string {
	if i.Image == "" {
		return ""
	}
	if strings.HasPrefix(i.Image, "http://") || strings.HasPrefix(i.Image, "https://") {
		return i.Image
	}
	return SpoonacularImageBase + i.Image
}

// SpoonacularInformation is the ingredient information response.
type SpoonacularInformation struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Amount        float64 `json:"amount"`
	Unit          string  `json:"unit"`
	Image         string  `json:"image"`
	EstimatedCost struct {
		Value float64 `json:"value"`
		Unit  string  `json:"unit"`
	} `json:"estimatedCost"`
	Nutrition struct {
		Nutrients []struct {
			Name   string  `json:"name"`
			Amount float64 `json:"amount"`
			Unit   string  `json:"unit"`
		} `json:"nutrients"`
	} `json:"nutrition"`
}

// SearchIngredient returns the best ingredient match for query.
func (c *SpoonacularClient) SearchIngredient(ctx context.Context, query string) (*SpoonacularIngredient, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	return call(ctx, c.up, "search_ingredient", func() (*SpoonacularIngredient, error) {
		q := url.Values{}
		q.Set("query", query)
		q.Set("number", "1")
		q.Set("apiKey", c.up.apiKey)

		var resp struct {
			Results []SpoonacularIngredient `json:"results"`
		}
		if err := c.up.getJSON(ctx, "/food/ingredients/search", q, &resp); err != nil {
			return nil, err
		}
		if len(resp.Results) == 0 {
			return nil, ErrNoMatch
		}
		return &resp.Results[0], nil
	})
}

// IngredientInformation returns nutrition and estimated cost for amount of
// ingredient id. An empty unit lets Spoonacular pick its default.
func (c *SpoonacularClient) IngredientInformation(ctx context.Context, id int, amount float64, unit string) (*SpoonacularInformation, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	return call(ctx, c.up, "ingredient_information", func() (*SpoonacularInformation, error) {
		q := url.Values{}
		q.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))
		if unit != "" {
			q.Set("unit", unit)
		}
		q.Set("apiKey", c.up.apiKey)

		var info SpoonacularInformation
		if err := c.up.getJSON(ctx, "/food/ingredients/"+strconv.Itoa(id)+"/information", q, &info); err != nil {
			return nil, err
		}
		return &info, nil
	})
}

// nutritionFacts converts an information response to NutritionFacts.
func (info *SpoonacularInformation) nutritionFacts(ingredient string) *models.NutritionFacts {
	facts := &models.NutritionFacts{
		Ingredient:  ingredient,
		Source:      models.SourceSpoonacular,
		FoodID:      strconv.Itoa(info.ID),
		Description: info.Name,
		Nutrients:   make([]models.Nutrient, 0, len(info.Nutrition.Nutrients)),
	}
	for _, n := range info.Nutrition.Nutrients {
		facts.Nutrients = append(facts.Nutrients, models.Nutrient{
			Name:   n.Name,
			Amount: n.Amount,
			Unit:   strings.ToLower(n.Unit),
		})
	}
	return facts
}
