// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package models

// Lookup sources.
const (
	SourceUSDA        = "usda"
	SourceSpoonacular = "spoonacular"
	SourceImageSearch = "image_search"
)

// Nutrient is one nutrient amount.
type Nutrient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// NutritionFacts is the nutrition lookup result for one ingredient.
type NutritionFacts struct {
	Ingredient  string     `json:"ingredient"`
	Source      string     `json:"source"`
	FoodID      string     `json:"food_id"`
	Description string     `json:"description"`
	Nutrients   []Nutrient `json:"nutrients"`
}

// IngredientPrice is Spoonacular's cost estimate for an ingredient amount.
type IngredientPrice struct {
	Ingredient    string  `json:"ingredient"`
	SpoonacularID int     `json:"spoonacular_id"`
	Amount        float64 `json:"amount"`
	Unit          string  `json:"unit"`
	CostCents     float64 `json:"cost_cents"`
}

// ImageResult is the first image found for a query.
type ImageResult struct {
	Query        string `json:"query"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Title        string `json:"title,omitempty"`
	Source       string `json:"source"`
}

// RecipeNutrition aggregates the nutrition of every ingredient of a recipe.
// Ingredients with no match are listed in Missing rather than failing the
// whole lookup. Totals are keyed "name (unit)".
type RecipeNutrition struct {
	RecipeID string             `json:"recipe_id"`
	Items    []NutritionFacts   `json:"items"`
	Missing  []string           `json:"missing"`
	Totals   map[string]float64 `json:"totals"`
}

// ChatMessage is one message of a chat conversation.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required,max=8000"`
}
