// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/pantry/internal/authz"
	"github.com/tomtom215/pantry/internal/middleware"
)

// slowRequestThreshold is when RequestLogger promotes a request to warn.
const slowRequestThreshold = 2 * time.Second

// Router wires the handlers to chi.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil ChiMiddleware is built from the
// handler's security config.
func NewRouter(handler *Handler, chiMiddleware *ChiMiddleware) *Router {
	if chiMiddleware == nil {
		chiMiddleware = NewChiMiddleware(ChiMiddlewareConfigFromSecurity(&handler.cfg.Security))
	}
	return &Router{handler: handler, chiMiddleware: chiMiddleware}
}

// SetupChi builds the route tree.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	mw := router.chiMiddleware
	authn := h.authn
	can := h.authz.Authorize

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(slowRequestThreshold))
	r.Use(middleware.PrometheusMetrics)
	r.Use(mw.CORS())
	r.Use(chimiddleware.Compress(5, "application/json"))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())

		r.Route("/health", func(r chi.Router) {
			r.Get("/", h.Health)
			r.Get("/live", h.HealthLive)
			r.Get("/ready", h.HealthReady)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Use(mw.RateLimitAuth())
			r.Post("/signup", h.SignUp)
			r.With(mw.RateLimitLogin()).Post("/login", h.Login)
			r.Post("/anonymous", h.Anonymous)
			r.Post("/logout", h.Logout)
			r.Get("/oidc/login", h.OIDCLogin)
			r.Get("/oidc/callback", h.OIDCCallback)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit())

			r.With(authn.Authenticate, can(authz.ObjProfile, authz.ActRead)).Get("/auth/me", h.Me)

			// Catalog reads are public.
			r.Get("/recipes", h.ListRecipes)
			r.Get("/recipes/{id}", h.GetRecipe)
			r.Get("/explore", h.Explore)

			r.Group(func(r chi.Router) {
				r.Use(authn.Authenticate)

				r.Group(func(r chi.Router) {
					r.Use(mw.RateLimitWrite(), can(authz.ObjRecipes, authz.ActWrite))
					r.Post("/recipes", h.CreateRecipe)
					r.Post("/recipes/{id}/rating", h.RateRecipe)
					// The store decides between author and admin.
					r.Delete("/recipes/{id}", h.DeleteRecipe)
				})

				r.Route("/me", func(r chi.Router) {
					r.With(can(authz.ObjProfile, authz.ActRead)).Group(func(r chi.Router) {
						r.Get("/saved", h.SavedRecipes)
						r.Get("/uploaded", h.UploadedRecipes)
						r.Get("/shopping", h.ShoppingList)
					})
					r.With(can(authz.ObjProfile, authz.ActWrite)).Group(func(r chi.Router) {
						r.Put("/saved/{id}", h.SaveRecipe)
						r.Delete("/saved/{id}", h.UnsaveRecipe)
						r.Post("/shopping", h.AddShoppingItems)
						r.Post("/shopping/from-recipe/{id}", h.AddRecipeToShoppingList)
						r.Patch("/shopping/{itemID}", h.UpdateShoppingItem)
						r.Delete("/shopping/{itemID}", h.RemoveShoppingItem)
						r.Delete("/shopping", h.ClearShoppingList)
					})
				})

				r.Group(func(r chi.Router) {
					r.Use(mw.RateLimitLookup(), can(authz.ObjLookup, authz.ActRead))
					r.Get("/recipes/{id}/nutrition", h.RecipeNutrition)
					r.Get("/lookup/nutrition", h.Nutrition)
					r.Get("/lookup/price", h.Price)
					r.Get("/lookup/image", h.Image)
				})

				r.With(can(authz.ObjChat, authz.ActUse)).Get("/chat/ws", h.Chat)
			})
		})
	})

	return r
}
