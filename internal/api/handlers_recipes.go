// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/pantry/internal/authz"
	"github.com/tomtom215/pantry/internal/events"
	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/models"
)

// ListRecipes returns the whole catalog as the explorer payload
// {"recipes": [...]}.
func (h *Handler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	list, cached, err := h.catalog.get(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, list, start, cached)
}

// GetRecipe returns one recipe.
func (h *Handler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec, err := h.store.GetRecipe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, rec, start, false)
}

// CreateRecipe stores a recipe authored by the caller.
func (h *Handler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req CreateRecipeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := h.checkRecipeLimits(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	c := claims(r.Context())
	rec, err := h.store.CreateRecipe(r.Context(), c.UserID, req.toRecipe())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Str("recipe_id", rec.ID).Msg("Recipe created")
	h.publish(r.Context(), &events.RecipeEvent{
		Topic:    events.TopicRecipeCreated,
		RecipeID: rec.ID,
		ActorID:  c.UserID,
	})
	respondSuccess(w, http.StatusCreated, rec, start, false)
}

// checkRecipeLimits applies the configured count limits.
func (h *Handler) checkRecipeLimits(req *CreateRecipeRequest) *models.APIError {
	limits := []struct {
		field string
		n     int
		max   int
	}{
		{"ingredients", len(req.Ingredients), h.cfg.API.MaxIngredients},
		{"steps", len(req.Steps), h.cfg.API.MaxSteps},
		{"tags", len(req.Tags), h.cfg.API.MaxTags},
	}
	for _, l := range limits {
		if l.max > 0 && l.n > l.max {
			return fieldError(l.field, fmt.Sprintf("%s must be at most %d items", l.field, l.max))
		}
	}
	return nil
}

// DeleteRecipe removes a recipe. Authors may delete their own recipes and
// admins any recipe.
func (h *Handler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")
	c := claims(r.Context())
	admin := h.authz.Can(r, authz.ObjRecipes, authz.ActDelete)

	if err := h.store.DeleteRecipe(r.Context(), id, c.UserID, admin); err != nil {
		respondErr(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Str("recipe_id", id).Bool("as_admin", admin).Msg("Recipe deleted")
	h.publish(r.Context(), &events.RecipeEvent{
		Topic:    events.TopicRecipeDeleted,
		RecipeID: id,
		ActorID:  c.UserID,
	})
	respondSuccess(w, http.StatusOK, map[string]string{"deleted": id}, start, false)
}

// RateRecipe records the caller's 1-5 star vote. Voting again replaces the
// earlier vote.
func (h *Handler) RateRecipe(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req RateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c := claims(r.Context())
	rec, err := h.store.RateRecipe(r.Context(), c.UserID, chi.URLParam(r, "id"), req.Stars)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	h.publish(r.Context(), &events.RecipeEvent{
		Topic:    events.TopicRecipeRated,
		RecipeID: rec.ID,
		ActorID:  c.UserID,
		Rating:   rec.Rating,
	})
	respondSuccess(w, http.StatusOK, rec, start, false)
}
