// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// lookupRequest reads and validates the query parameters shared by the
// lookup endpoints. param names the query parameter holding the query.
func (h *Handler) lookupRequest(w http.ResponseWriter, r *http.Request, param string) (LookupRequest, bool) {
	if h.lookup == nil {
		respondErr(w, r, ErrServiceUnavailable)
		return LookupRequest{}, false
	}
	req := LookupRequest{
		Query:    r.URL.Query().Get(param),
		Quantity: r.URL.Query().Get("quantity"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return req, false
	}
	return req, true
}

// Nutrition returns nutrition facts for ?ingredient=.
func (h *Handler) Nutrition(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, ok := h.lookupRequest(w, r, "ingredient")
	if !ok {
		return
	}
	facts, err := h.lookup.Nutrition(r.Context(), req.Query)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, facts, start, false)
}

// RecipeNutrition sums nutrition facts over a recipe's ingredients.
// Ingredients without a match are reported rather than failing the request.
func (h *Handler) RecipeNutrition(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.lookup == nil {
		respondErr(w, r, ErrServiceUnavailable)
		return
	}
	rec, err := h.store.GetRecipe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	totals, err := h.lookup.RecipeNutrition(r.Context(), rec)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, totals, start, false)
}

// Price estimates the cost of ?ingredient= in the optional ?quantity=.
func (h *Handler) Price(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, ok := h.lookupRequest(w, r, "ingredient")
	if !ok {
		return
	}
	price, err := h.lookup.Price(r.Context(), req.Query, req.Quantity)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, price, start, false)
}

// Image returns the first image search hit for ?q=.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, ok := h.lookupRequest(w, r, "q")
	if !ok {
		return
	}
	img, err := h.lookup.Image(r.Context(), req.Query)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, img, start, false)
}
