// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

// Package cache provides a thread-safe in-memory TTL cache.
//
// Pantry uses it for three things: the catalog snapshot served by /explore
// (invalidated by recipe events), third-party lookup results, and single-use
// OIDC login state (see Take).
//
// Every cache has a name used as the cache_type label of the cache_* metrics.
package cache
