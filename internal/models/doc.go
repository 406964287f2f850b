// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

/*
Package models defines the data structures shared by the Pantry packages.

Model Categories:

 1. Documents stored in the badger store:
    - Recipe: a shared recipe with its tags and rating aggregate
    - User: an account with saved and uploaded recipe ids and a shopping list

 2. Explorer payload:
    - RecipeList: the {"recipes": [...]} payload the Recipe Explorer loads.
      Decoding is tolerant: malformed records are dropped or defaulted
      instead of failing the whole payload.

 3. Lookup results:
    - NutritionFacts, IngredientPrice, ImageResult, RecipeNutrition
    - ChatMessage for the streaming chat endpoint

 4. API envelope:
    - APIResponse, Metadata, APIError

JSON encoding uses github.com/goccy/go-json throughout.
*/
package models
