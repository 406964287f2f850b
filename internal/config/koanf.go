// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/pantry/config.yaml",
	"/etc/pantry/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Store: StoreConfig{
			Path:           "/data/pantry",
			GCInterval:     10 * time.Minute,
			GCDiscardRatio: 0.5,
		},
		API: APIConfig{
			CatalogCacheTTL: time.Minute,
			MaxIngredients:  100,
			MaxSteps:        100,
			MaxTags:         32,
		},
		Security: SecurityConfig{
			SessionTimeout:  7 * 24 * time.Hour,
			AllowAnonymous:  true,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		OIDC: OIDCConfig{
			Scopes:            []string{"openid", "profile", "email"},
			PostLoginRedirect: "/",
		},
		Lookup: LookupConfig{
			Timeout:     15 * time.Second,
			CacheTTL:    24 * time.Hour,
			Concurrency: 4,
			USDA: UpstreamConfig{
				BaseURL:           "https://api.nal.usda.gov",
				RequestsPerSecond: 2,
				Burst:             5,
			},
			Spoonacular: UpstreamConfig{
				BaseURL:           "https://api.spoonacular.com",
				RequestsPerSecond: 1,
				Burst:             2,
			},
			ImageSearch: ImageSearchConfig{
				BaseURL:           "https://www.googleapis.com/customsearch/v1",
				RequestsPerSecond: 1,
				Burst:             2,
			},
		},
		Chat: ChatConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			Timeout:     2 * time.Minute,
			MaxMessages: 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// sliceConfigPaths are list fields that accept comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"oidc.scopes",
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"http_port":        "server.port",
	"http_host":        "server.host",
	"server_timeout":   "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	"store_path":             "store.path",
	"store_in_memory":        "store.in_memory",
	"store_gc_interval":      "store.gc_interval",
	"store_gc_discard_ratio": "store.gc_discard_ratio",
	"store_sync_writes":      "store.sync_writes",

	"catalog_cache_ttl": "api.catalog_cache_ttl",
	"max_ingredients":   "api.max_ingredients",
	"max_steps":         "api.max_steps",
	"max_tags":          "api.max_tags",

	"jwt_secret":          "security.jwt_secret",
	"session_timeout":     "security.session_timeout",
	"allow_anonymous":     "security.allow_anonymous",
	"admin_email":         "security.admin_email",
	"cookie_secure":       "security.cookie_secure",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	"oidc_enabled":             "oidc.enabled",
	"oidc_issuer_url":          "oidc.issuer_url",
	"oidc_client_id":           "oidc.client_id",
	"oidc_client_secret":       "oidc.client_secret",
	"oidc_redirect_url":        "oidc.redirect_url",
	"oidc_scopes":              "oidc.scopes",
	"oidc_post_login_redirect": "oidc.post_login_redirect",

	"lookup_timeout":         "lookup.timeout",
	"lookup_cache_ttl":       "lookup.cache_ttl",
	"lookup_concurrency":     "lookup.concurrency",
	"usda_base_url":          "lookup.usda.base_url",
	"usda_api_key":           "lookup.usda.api_key",
	"usda_rps":               "lookup.usda.requests_per_second",
	"spoonacular_base_url":   "lookup.spoonacular.base_url",
	"spoonacular_api_key":    "lookup.spoonacular.api_key",
	"spoonacular_rps":        "lookup.spoonacular.requests_per_second",
	"image_search_base_url":  "lookup.image_search.base_url",
	"image_search_api_key":   "lookup.image_search.api_key",
	"image_search_engine_id": "lookup.image_search.engine_id",

	"chat_base_url":     "chat.base_url",
	"chat_api_key":      "chat.api_key",
	"chat_model":        "chat.model",
	"chat_timeout":      "chat.timeout",
	"chat_max_messages": "chat.max_messages",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// LoadWithKoanf layers defaults, the config file and environment variables,
// then validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// processSliceFields splits comma-separated strings (from env) into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
