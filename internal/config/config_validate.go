// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	minRateLimitReqs   = 1
	maxRateLimitReqs   = 100000
	minRateLimitWindow = time.Second
	maxRateLimitWindow = time.Hour
	minJWTSecretLength = 32
	maxSessionTimeout  = 90 * 24 * time.Hour
)

var (
	validEnvironments = map[string]bool{"development": true, "production": true, "test": true}
	validLogLevels    = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	validLogFormats   = map[string]bool{"json": true, "console": true}
)

// placeholderPatterns catch secrets that were copied from an example file.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"PLACEHOLDER",
	"EXAMPLE",
}

// Validate checks the whole configuration and returns the first problem found.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateStore,
		c.validateAPI,
		c.validateSecurity,
		c.validateOIDC,
		c.validateLookup,
		c.validateChat,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

// IsProduction reports whether ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("SERVER_TIMEOUT must be positive")
	}
	if !validEnvironments[c.Server.Environment] {
		return fmt.Errorf("ENVIRONMENT must be one of development, production, test; got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateStore() error {
	if !c.Store.InMemory && strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("STORE_PATH is required unless STORE_IN_MEMORY=true")
	}
	if c.Store.GCInterval < 0 {
		return fmt.Errorf("STORE_GC_INTERVAL must not be negative")
	}
	if c.Store.GCDiscardRatio <= 0 || c.Store.GCDiscardRatio >= 1 {
		return fmt.Errorf("STORE_GC_DISCARD_RATIO must be between 0 and 1 (exclusive), got %v", c.Store.GCDiscardRatio)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.CatalogCacheTTL < 0 {
		return fmt.Errorf("CATALOG_CACHE_TTL must not be negative")
	}
	if c.API.MaxIngredients < 1 || c.API.MaxSteps < 1 || c.API.MaxTags < 1 {
		return fmt.Errorf("MAX_INGREDIENTS, MAX_STEPS and MAX_TAGS must be at least 1")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if err := c.validateJWTSecret(); err != nil {
		return err
	}
	if c.Security.SessionTimeout <= 0 || c.Security.SessionTimeout > maxSessionTimeout {
		return fmt.Errorf("SESSION_TIMEOUT must be between 1ns and %s", maxSessionTimeout)
	}
	if c.Security.AdminEmail != "" && !strings.Contains(c.Security.AdminEmail, "@") {
		return fmt.Errorf("ADMIN_EMAIL must be an email address")
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < minRateLimitReqs || c.Security.RateLimitReqs > maxRateLimitReqs {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitReqs, maxRateLimitReqs)
		}
		if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be between %s and %s", minRateLimitWindow, maxRateLimitWindow)
		}
	}
	return c.validateCORS()
}

func (c *Config) validateJWTSecret() error {
	s := c.Security.JWTSecret
	if s == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(s) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if containsPlaceholder(s) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate one with: openssl rand -base64 32")
	}
	return nil
}

// validateCORS rejects a wildcard origin in production, where session cookies
// are in use.
func (c *Config) validateCORS() error {
	if c.IsProduction() && c.HasWildcardCORS() {
		return fmt.Errorf("CORS_ORIGINS=* is not allowed in production; list the allowed origins explicitly")
	}
	return nil
}

// HasWildcardCORS reports whether CORS_ORIGINS contains "*".
func (c *Config) HasWildcardCORS() bool {
	for _, o := range c.Security.CORSOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

func (c *Config) validateOIDC() error {
	if !c.OIDC.Enabled {
		return nil
	}
	if err := validateBaseURL(c.OIDC.IssuerURL, "OIDC_ISSUER_URL"); err != nil {
		return err
	}
	if c.OIDC.ClientID == "" {
		return fmt.Errorf("OIDC_CLIENT_ID is required when OIDC_ENABLED=true")
	}
	if err := validateCallbackURL(c.OIDC.RedirectURL, "OIDC_REDIRECT_URL"); err != nil {
		return err
	}
	hasOpenID := false
	for _, s := range c.OIDC.Scopes {
		if s == "openid" {
			hasOpenID = true
			break
		}
	}
	if !hasOpenID {
		return fmt.Errorf("OIDC_SCOPES must include openid")
	}
	return nil
}

func (c *Config) validateLookup() error {
	if c.Lookup.Timeout <= 0 {
		return fmt.Errorf("LOOKUP_TIMEOUT must be positive")
	}
	if c.Lookup.Concurrency < 1 || c.Lookup.Concurrency > 32 {
		return fmt.Errorf("LOOKUP_CONCURRENCY must be between 1 and 32")
	}
	upstreams := []struct {
		name string
		cfg  UpstreamConfig
	}{
		{"USDA", c.Lookup.USDA},
		{"SPOONACULAR", c.Lookup.Spoonacular},
		{"IMAGE_SEARCH", c.Lookup.ImageSearch.Upstream()},
	}
	for _, u := range upstreams {
		if err := validateBaseURL(u.cfg.BaseURL, u.name+"_BASE_URL"); err != nil {
			return err
		}
		if u.cfg.RequestsPerSecond <= 0 {
			return fmt.Errorf("%s requests_per_second must be positive", u.name)
		}
	}
	if c.Lookup.ImageSearch.APIKey != "" && c.Lookup.ImageSearch.EngineID == "" {
		return fmt.Errorf("IMAGE_SEARCH_ENGINE_ID is required when IMAGE_SEARCH_API_KEY is set")
	}
	return nil
}

func (c *Config) validateChat() error {
	if err := validateBaseURL(c.Chat.BaseURL, "CHAT_BASE_URL"); err != nil {
		return err
	}
	if c.Chat.APIKey != "" && c.Chat.Model == "" {
		return fmt.Errorf("CHAT_MODEL is required when CHAT_API_KEY is set")
	}
	if c.Chat.MaxMessages < 1 {
		return fmt.Errorf("CHAT_MAX_MESSAGES must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	if !validLogFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("LOG_FORMAT must be json or console; got %q", c.Logging.Format)
	}
	return nil
}

func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	for _, p := range placeholderPatterns {
		if strings.Contains(upper, p) {
			return true
		}
	}
	return false
}
