// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

// Package config loads and validates the Pantry server configuration.
//
// Values are layered with koanf: built-in defaults, then an optional YAML file
// (CONFIG_PATH or one of DefaultConfigPaths), then environment variables.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Store    StoreConfig    `koanf:"store"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	OIDC     OIDCConfig     `koanf:"oidc"`
	Lookup   LookupConfig   `koanf:"lookup"`
	Chat     ChatConfig     `koanf:"chat"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// StoreConfig holds the badger document store settings.
type StoreConfig struct {
	Path string `koanf:"path"`

	// InMemory keeps all data in RAM. Nothing survives a restart.
	InMemory bool `koanf:"in_memory"`

	// GCInterval is how often value-log garbage collection runs. 0 disables it.
	GCInterval     time.Duration `koanf:"gc_interval"`
	GCDiscardRatio float64       `koanf:"gc_discard_ratio"`
	SyncWrites     bool          `koanf:"sync_writes"`
}

// APIConfig holds request handling limits.
type APIConfig struct {
	// CatalogCacheTTL bounds how long /explore serves a cached recipe snapshot.
	// Recipe events invalidate it earlier.
	CatalogCacheTTL time.Duration `koanf:"catalog_cache_ttl"`
	MaxIngredients  int           `koanf:"max_ingredients"`
	MaxSteps        int           `koanf:"max_steps"`
	MaxTags         int           `koanf:"max_tags"`
}

// SecurityConfig holds authentication and abuse-protection settings.
type SecurityConfig struct {
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`
	AllowAnonymous bool          `koanf:"allow_anonymous"`

	// AdminEmail grants the admin role to the account that signs up with it.
	AdminEmail string `koanf:"admin_email"`

	CookieSecure      bool          `koanf:"cookie_secure"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// OIDCConfig configures the OAuth sign-in flow.
type OIDCConfig struct {
	Enabled      bool     `koanf:"enabled"`
	IssuerURL    string   `koanf:"issuer_url"`
	ClientID     string   `koanf:"client_id"`
	ClientSecret string   `koanf:"client_secret"`
	RedirectURL  string   `koanf:"redirect_url"`
	Scopes       []string `koanf:"scopes"`

	// PostLoginRedirect is where the browser lands after a successful callback.
	PostLoginRedirect string `koanf:"post_login_redirect"`
}

// UpstreamConfig describes one third-party HTTP API.
type UpstreamConfig struct {
	BaseURL           string  `koanf:"base_url"`
	APIKey            string  `koanf:"api_key"`
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
}

// Configured reports whether the upstream has credentials.
func (u UpstreamConfig) Configured() bool {
	return u.APIKey != ""
}

// ImageSearchConfig is an UpstreamConfig plus the search engine id.
type ImageSearchConfig struct {
	BaseURL           string  `koanf:"base_url"`
	APIKey            string  `koanf:"api_key"`
	EngineID          string  `koanf:"engine_id"`
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
}

// Upstream returns the shared upstream view of the image search settings.
func (c ImageSearchConfig) Upstream() UpstreamConfig {
	return UpstreamConfig{
		BaseURL:           c.BaseURL,
		APIKey:            c.APIKey,
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
	}
}

// LookupConfig holds the nutrition, price and image lookup settings.
type LookupConfig struct {
	Timeout     time.Duration     `koanf:"timeout"`
	CacheTTL    time.Duration     `koanf:"cache_ttl"`
	Concurrency int               `koanf:"concurrency"`
	USDA        UpstreamConfig    `koanf:"usda"`
	Spoonacular UpstreamConfig    `koanf:"spoonacular"`
	ImageSearch ImageSearchConfig `koanf:"image_search"`
}

// ChatConfig holds the streaming chat completion settings.
type ChatConfig struct {
	BaseURL     string        `koanf:"base_url"`
	APIKey      string        `koanf:"api_key"`
	Model       string        `koanf:"model"`
	Timeout     time.Duration `koanf:"timeout"`
	MaxMessages int           `koanf:"max_messages"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads the configuration from defaults, file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
