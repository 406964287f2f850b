// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

/*
Package metrics defines the Prometheus collectors for Pantry.

Collectors are registered with the default registry through promauto and
exposed at /metrics:

	curl http://localhost:8080/metrics

# Available Metrics

HTTP:
  - api_requests_total{method, endpoint, status_code}
  - api_request_duration_seconds{method, endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}

Store:
  - store_operation_duration_seconds{operation, collection}
  - store_operation_errors_total{operation, collection}
  - store_gc_runs_total{result}

Explorer:
  - explorer_loads_total{state}
  - explorer_load_duration_seconds
  - explorer_catalog_recipes

Lookups and circuit breakers:
  - lookup_requests_total{upstream, result}
  - lookup_request_duration_seconds{upstream}
  - lookup_fallbacks_total{kind}
  - circuit_breaker_state{name} (0=closed, 1=half-open, 2=open)
  - circuit_breaker_requests_total{name, result}
  - circuit_breaker_consecutive_failures{name}
  - circuit_breaker_state_transitions_total{name, from_state, to_state}

Cache, events, auth, chat:
  - cache_hits_total, cache_misses_total, cache_entries, cache_evictions_total{cache_type}
  - events_published_total{topic, result}, events_consumed_total{topic}
  - auth_attempts_total{provider, result}
  - websocket_connections, websocket_messages_sent_total,
    websocket_messages_received_total, websocket_errors_total{error_type}
  - chat_streams_total{result}, chat_stream_chunks_total

Usage:

	start := time.Now()
	err := doWork()
	metrics.RecordStoreOp("get", "recipes", time.Since(start), err)
*/
package metrics
