// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package api

import (
	"strings"

	"github.com/tomtom215/pantry/internal/models"
)

// SignUpRequest is the body of POST /auth/signup. Password strength is
// checked by the auth service's policy, not here.
type SignUpRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,max=72"`
	DisplayName string `json:"display_name" validate:"max=80"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

// IngredientInput is one ingredient line of an uploaded recipe.
type IngredientInput struct {
	Quantity string `json:"quantity" validate:"max=50"`
	Name     string `json:"name" validate:"required,nonblank,max=120"`
}

// CreateRecipeRequest is the body of POST /recipes. Count limits beyond
// these static bounds come from configuration.
type CreateRecipeRequest struct {
	Name        string            `json:"name" validate:"required,nonblank,max=200"`
	Ingredients []IngredientInput `json:"ingredients" validate:"required,min=1,max=500,dive"`
	Steps       []string          `json:"steps" validate:"required,min=1,max=500,dive,nonblank,max=4000"`
	Tags        map[string]bool   `json:"tags" validate:"max=128,dive,keys,tagname,endkeys"`
	ImageURL    string            `json:"image_url" validate:"omitempty,http_url,max=2048"`
}

// toRecipe converts the request to a recipe document, trimming names and
// steps.
func (req *CreateRecipeRequest) toRecipe() *models.Recipe {
	r := &models.Recipe{
		Name:        strings.TrimSpace(req.Name),
		Ingredients: make([]models.Ingredient, 0, len(req.Ingredients)),
		Steps:       make([]string, 0, len(req.Steps)),
		Tags:        make(map[string]bool, len(req.Tags)),
		ImageURL:    req.ImageURL,
	}
	for _, in := range req.Ingredients {
		r.Ingredients = append(r.Ingredients, models.Ingredient{
			Quantity: strings.TrimSpace(in.Quantity),
			Name:     strings.TrimSpace(in.Name),
		})
	}
	for _, s := range req.Steps {
		r.Steps = append(r.Steps, strings.TrimSpace(s))
	}
	for k, v := range req.Tags {
		r.Tags[k] = v
	}
	return r
}

// RateRequest is the body of POST /recipes/{id}/rating.
type RateRequest struct {
	Stars int `json:"stars" validate:"gte=1,lte=5"`
}

// ShoppingItemInput is one item of POST /me/shopping.
type ShoppingItemInput struct {
	Name     string `json:"name" validate:"required,nonblank,max=120"`
	Quantity string `json:"quantity" validate:"max=50"`
}

// AddShoppingItemsRequest is the body of POST /me/shopping.
type AddShoppingItemsRequest struct {
	Items []ShoppingItemInput `json:"items" validate:"required,min=1,max=100,dive"`
}

func (req *AddShoppingItemsRequest) toItems() []models.ShoppingItem {
	items := make([]models.ShoppingItem, 0, len(req.Items))
	for _, in := range req.Items {
		items = append(items, models.ShoppingItem{
			Name:     strings.TrimSpace(in.Name),
			Quantity: strings.TrimSpace(in.Quantity),
		})
	}
	return items
}

// UpdateShoppingItemRequest is the body of PATCH /me/shopping/{itemID}.
type UpdateShoppingItemRequest struct {
	Checked *bool `json:"checked" validate:"required"`
}

// ExploreRequest holds the /explore query parameters.
type ExploreRequest struct {
	Query    string   `json:"q" validate:"max=200"`
	TagQuery string   `json:"tag_q" validate:"max=100"`
	Include  []string `json:"include" validate:"max=64,dive,max=64"`
	Exclude  []string `json:"exclude" validate:"max=64,dive,max=64"`
}

// LookupRequest holds the /lookup query parameters.
type LookupRequest struct {
	Query    string `json:"query" validate:"required,nonblank,max=200"`
	Quantity string `json:"quantity" validate:"max=50"`
}
