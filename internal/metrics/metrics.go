// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Store Metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Duration of document store operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation", "collection"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operation_errors_total",
			Help: "Total number of failed document store operations",
		},
		[]string{"operation", "collection"},
	)

	StoreGCRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_gc_runs_total",
			Help: "Value-log garbage collection runs by result",
		},
		[]string{"result"}, // "rewritten", "nothing", "error"
	)

	// Explorer Metrics
	ExplorerLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_loads_total",
			Help: "Recipe Explorer catalog loads by resulting state",
		},
		[]string{"state"},
	)

	ExplorerLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "explorer_load_duration_seconds",
			Help:    "Duration of Recipe Explorer catalog loads",
			Buckets: prometheus.DefBuckets,
		},
	)

	ExplorerCatalogRecipes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "explorer_catalog_recipes",
			Help: "Number of recipes in the most recently loaded catalog",
		},
	)

	// Lookup Metrics
	LookupRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookup_requests_total",
			Help: "Third-party lookup requests by upstream and result",
		},
		[]string{"upstream", "result"}, // result: "success", "error", "no_match"
	)

	LookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lookup_request_duration_seconds",
			Help:    "Duration of third-party lookup requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"upstream"},
	)

	LookupFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookup_fallbacks_total",
			Help: "Lookups answered by the secondary upstream",
		},
		[]string{"kind"}, // "nutrition", "image"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "catalog", "lookup", "oidc_state"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry or invalidation)",
		},
		[]string{"cache_type"},
	)

	// Domain Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Domain events published by topic and result",
		},
		[]string{"topic", "result"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Domain events handled by the event consumer",
		},
		[]string{"topic"},
	)

	// Auth Metrics
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Sign-in and sign-up attempts by provider and result",
		},
		[]string{"provider", "result"},
	)

	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Authorization decisions by role, object, action and decision",
		},
		[]string{"role", "object", "action", "decision"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Chat Metrics
	ChatStreams = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_streams_total",
			Help: "Chat completion streams by result",
		},
		[]string{"result"},
	)

	ChatStreamChunks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_stream_chunks_total",
			Help: "Total content chunks relayed from the chat upstream",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit counts a rejected request.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordStoreOp records one document store operation.
func RecordStoreOp(operation, collection string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(operation, collection).Observe(duration.Seconds())
	if err != nil {
		StoreOperationErrors.WithLabelValues(operation, collection).Inc()
	}
}

// RecordStoreGC records the outcome of one value-log GC run.
func RecordStoreGC(result string) {
	StoreGCRuns.WithLabelValues(result).Inc()
}

// RecordExplorerLoad records a catalog load. recipes is ignored for failed loads.
func RecordExplorerLoad(state string, duration time.Duration, recipes int) {
	ExplorerLoads.WithLabelValues(state).Inc()
	ExplorerLoadDuration.Observe(duration.Seconds())
	if state == "loaded" {
		ExplorerCatalogRecipes.Set(float64(recipes))
	}
}

// RecordLookup records one upstream call. result is "success", "error" or "no_match".
func RecordLookup(upstream, result string, duration time.Duration) {
	LookupRequests.WithLabelValues(upstream, result).Inc()
	LookupDuration.WithLabelValues(upstream).Observe(duration.Seconds())
}

// RecordLookupFallback counts a lookup served by the secondary upstream.
func RecordLookupFallback(kind string) {
	LookupFallbacks.WithLabelValues(kind).Inc()
}

// RecordCacheHit increments the hit counter for a cache.
func RecordCacheHit(cacheType string) {
	CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss increments the miss counter for a cache.
func RecordCacheMiss(cacheType string) {
	CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordEventPublished records a publish attempt.
func RecordEventPublished(topic string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	EventsPublished.WithLabelValues(topic, result).Inc()
}

// RecordEventConsumed records a handled event.
func RecordEventConsumed(topic string) {
	EventsConsumed.WithLabelValues(topic).Inc()
}

// RecordAuthAttempt records a sign-in or sign-up attempt.
func RecordAuthAttempt(provider string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	AuthAttempts.WithLabelValues(provider, result).Inc()
}

// RecordAuthzDecision records one casbin decision.
func RecordAuthzDecision(role, object, action string, allowed bool) {
	decision := "allow"
	if !allowed {
		decision = "deny"
	}
	AuthzDecisions.WithLabelValues(role, object, action, decision).Inc()
}

// RecordChatStream records the outcome of a chat stream and its chunk count.
func RecordChatStream(result string, chunks int) {
	ChatStreams.WithLabelValues(result).Inc()
	ChatStreamChunks.Add(float64(chunks))
}
