// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/pantry/internal/api"
	"github.com/tomtom215/pantry/internal/auth"
	"github.com/tomtom215/pantry/internal/authz"
	"github.com/tomtom215/pantry/internal/config"
	"github.com/tomtom215/pantry/internal/events"
	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/lookup"
	"github.com/tomtom215/pantry/internal/store"
	"github.com/tomtom215/pantry/internal/supervisor"
	"github.com/tomtom215/pantry/internal/supervisor/services"
	ws "github.com/tomtom215/pantry/internal/websocket"
)

// oidcDiscoveryTimeout bounds the provider discovery request at startup.
const oidcDiscoveryTimeout = 15 * time.Second

//nolint:gocyclo // sequential wiring of every component
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("addr", cfg.Server.Addr()).
		Bool("store_in_memory", cfg.Store.InMemory).
		Msg("Starting Pantry")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Store
	st, err := store.Open(store.Config{
		Path:       cfg.Store.Path,
		InMemory:   cfg.Store.InMemory,
		SyncWrites: cfg.Store.SyncWrites,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	// Auth
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}
	authService, err := auth.NewService(st, jwtManager, auth.ServiceConfig{
		AdminEmail:     cfg.Security.AdminEmail,
		AllowAnonymous: cfg.Security.AllowAnonymous,
		Policy:         auth.DefaultPasswordPolicy(),
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize auth service")
	}

	var oidcFlow *auth.OIDCFlow
	if cfg.OIDC.Enabled {
		discoverCtx, cancel := context.WithTimeout(ctx, oidcDiscoveryTimeout)
		oidcFlow, err = auth.NewOIDCFlow(discoverCtx, &cfg.OIDC, &http.Client{Timeout: oidcDiscoveryTimeout})
		cancel()
		if err != nil {
			logging.Fatal().Err(err).Str("issuer", cfg.OIDC.IssuerURL).Msg("Failed to initialize OIDC")
		}
		defer oidcFlow.Close()
		logging.Info().Str("issuer", cfg.OIDC.IssuerURL).Msg("OIDC sign-in enabled")
	}

	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization")
	}
	defer enforcer.Close()

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	if cfg.HasWildcardCORS() {
		logging.Warn().Msg("CORS_ORIGINS=* allows any website to call the API; list origins explicitly outside development")
	}

	// Lookups, chat hub and events
	lookupService := lookup.NewService(&cfg.Lookup, &cfg.Chat)
	defer lookupService.Close()
	for name, ok := range lookupService.Upstreams() {
		if !ok {
			logging.Info().Str("upstream", name).Msg("Upstream not configured, its endpoints answer 503")
		}
	}

	hub := ws.NewHub()
	bus := events.NewBus()
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	// HTTP
	handler, err := api.NewHandler(api.Dependencies{
		Config:   cfg,
		Store:    st,
		Auth:     authService,
		Enforcer: enforcer,
		OIDC:     oidcFlow,
		Lookup:   lookupService,
		Hub:      hub,
		Events:   bus,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create API handler")
	}
	defer handler.Close()

	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security)))
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
		// No WriteTimeout: chat sessions stream for as long as they are open.
	}

	// Supervisor tree
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if !cfg.Store.InMemory && cfg.Store.GCInterval > 0 {
		tree.AddDataService(services.NewStoreGCService(st, cfg.Store.GCInterval, cfg.Store.GCDiscardRatio))
	}
	tree.AddMessagingService(services.NewHubService(hub))
	tree.AddMessagingService(events.NewConsumer(bus, events.DefaultConsumerConfig(),
		events.InvalidateCache(handler.CatalogCache()),
		events.NotifyClients(hub),
	))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for services to stop")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	stop()
	// errCh is closed once the tree has stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}
	logging.Info().Msg("Pantry stopped")
}
