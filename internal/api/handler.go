// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package api

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/pantry/internal/auth"
	"github.com/tomtom215/pantry/internal/authz"
	"github.com/tomtom215/pantry/internal/config"
	"github.com/tomtom215/pantry/internal/events"
	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/models"
	"github.com/tomtom215/pantry/internal/store"
	ws "github.com/tomtom215/pantry/internal/websocket"
)

// Lookup is the ingredient lookup service. *lookup.Service implements it.
type Lookup interface {
	Nutrition(ctx context.Context, ingredient string) (*models.NutritionFacts, error)
	RecipeNutrition(ctx context.Context, r *models.Recipe) (*models.RecipeNutrition, error)
	Price(ctx context.Context, ingredient, quantity string) (*models.IngredientPrice, error)
	Image(ctx context.Context, query string) (*models.ImageResult, error)
	Chat(ctx context.Context, messages []models.ChatMessage, onChunk func(string) error) (int, error)
	Upstreams() map[string]bool
}

// Dependencies are the collaborators of the API. Config, Store, Auth and
// Enforcer are required. The rest are optional and their endpoints answer
// 503 when missing.
type Dependencies struct {
	Config   *config.Config
	Store    *store.Store
	Auth     *auth.Service
	Enforcer *authz.Enforcer

	OIDC   *auth.OIDCFlow
	Lookup Lookup
	Hub    *ws.Hub
	Events events.Publisher
}

// Handler holds the dependencies of the API handlers.
type Handler struct {
	cfg     *config.Config
	store   *store.Store
	auth    *auth.Service
	oidc    *auth.OIDCFlow
	authn   *auth.Middleware
	authz   *authz.Middleware
	lookup  Lookup
	hub     *ws.Hub
	events  events.Publisher
	catalog *catalogCache
	started time.Time
}

// NewHandler creates the handler.
func NewHandler(deps Dependencies) (*Handler, error) {
	switch {
	case deps.Config == nil:
		return nil, errors.New("api: config is required")
	case deps.Store == nil:
		return nil, errors.New("api: store is required")
	case deps.Auth == nil:
		return nil, errors.New("api: auth service is required")
	case deps.Enforcer == nil:
		return nil, errors.New("api: authz enforcer is required")
	}

	return &Handler{
		cfg:     deps.Config,
		store:   deps.Store,
		auth:    deps.Auth,
		oidc:    deps.OIDC,
		authn:   auth.NewMiddleware(deps.Auth.JWT(), writeAuthError),
		authz:   authz.NewMiddleware(deps.Enforcer, writeAuthError),
		lookup:  deps.Lookup,
		hub:     deps.Hub,
		events:  deps.Events,
		catalog: newCatalogCache(deps.Config.API.CatalogCacheTTL, deps.Store.Fetcher()),
		started: time.Now(),
	}, nil
}

// CatalogCache is cleared by the event consumer when recipes change.
func (h *Handler) CatalogCache() events.Clearer {
	return h.catalog
}

// Close releases the catalog cache.
func (h *Handler) Close() {
	h.catalog.close()
}

// publish clears the catalog snapshot so the caller reads its own write, then
// announces the change. Publish failures are logged; the write already
// succeeded.
func (h *Handler) publish(ctx context.Context, ev *events.RecipeEvent) {
	h.catalog.Clear()
	if h.events == nil {
		return
	}
	if err := h.events.Publish(ctx, ev); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("topic", ev.Topic).Msg("Failed to publish recipe event")
	}
}

// claims returns the caller's session claims. Routes using it are mounted
// behind Authenticate.
func claims(ctx context.Context) *auth.Claims {
	c, _ := auth.ClaimsFromContext(ctx)
	return c
}
