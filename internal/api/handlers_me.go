// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/pantry/internal/models"
)

// SavedRecipes lists the caller's saved recipes.
func (h *Handler) SavedRecipes(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	recipes, err := h.store.SavedRecipes(r.Context(), claims(r.Context()).UserID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, &models.RecipeList{Recipes: recipes}, start, false)
}

// SaveRecipe bookmarks a recipe. Saving twice is a no-op.
func (h *Handler) SaveRecipe(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")
	if err := h.store.SaveRecipe(r.Context(), claims(r.Context()).UserID, id); err != nil {
		respondErr(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"saved": id}, start, false)
}

// UnsaveRecipe removes a bookmark.
func (h *Handler) UnsaveRecipe(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")
	if err := h.store.UnsaveRecipe(r.Context(), claims(r.Context()).UserID, id); err != nil {
		respondErr(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"unsaved": id}, start, false)
}

// UploadedRecipes lists recipes the caller authored.
func (h *Handler) UploadedRecipes(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	recipes, err := h.store.UploadedRecipes(r.Context(), claims(r.Context()).UserID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, &models.RecipeList{Recipes: recipes}, start, false)
}

// ShoppingList returns the caller's shopping list.
func (h *Handler) ShoppingList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	items, err := h.store.ShoppingList(r.Context(), claims(r.Context()).UserID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, shoppingPayload(items), start, false)
}

// AddShoppingItems appends free-form items.
func (h *Handler) AddShoppingItems(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req AddShoppingItemsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	items, err := h.store.AddShoppingItems(r.Context(), claims(r.Context()).UserID, req.toItems())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, shoppingPayload(items), start, false)
}

// AddRecipeToShoppingList appends every ingredient of a recipe.
func (h *Handler) AddRecipeToShoppingList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	items, err := h.store.AddRecipeToShoppingList(r.Context(), claims(r.Context()).UserID, chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, shoppingPayload(items), start, false)
}

// UpdateShoppingItem checks or unchecks one item.
func (h *Handler) UpdateShoppingItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req UpdateShoppingItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	item, err := h.store.SetShoppingItemChecked(r.Context(), claims(r.Context()).UserID, chi.URLParam(r, "itemID"), *req.Checked)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, item, start, false)
}

// RemoveShoppingItem deletes one item.
func (h *Handler) RemoveShoppingItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	itemID := chi.URLParam(r, "itemID")
	if err := h.store.RemoveShoppingItem(r.Context(), claims(r.Context()).UserID, itemID); err != nil {
		respondErr(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"removed": itemID}, start, false)
}

// ClearShoppingList empties the list, or only the checked items when
// checked_only=true.
func (h *Handler) ClearShoppingList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checkedOnly := false
	if v := r.URL.Query().Get("checked_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondAPIError(w, http.StatusBadRequest, fieldError("checked_only", "checked_only must be true or false"))
			return
		}
		checkedOnly = b
	}
	n, err := h.store.ClearShoppingList(r.Context(), claims(r.Context()).UserID, checkedOnly)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]int{"removed": n}, start, false)
}

type shoppingListResponse struct {
	Items     []models.ShoppingItem `json:"items"`
	Remaining int                   `json:"remaining"`
}

func shoppingPayload(items []models.ShoppingItem) *shoppingListResponse {
	if items == nil {
		items = []models.ShoppingItem{}
	}
	resp := &shoppingListResponse{Items: items}
	for i := range items {
		if !items[i].Checked {
			resp.Remaining++
		}
	}
	return resp
}
