// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

// Package services adapts Pantry components to suture.Service.
//
// HTTPServerService turns ListenAndServe/Shutdown into Serve(ctx).
// HubService runs the chat WebSocket hub. StoreGCService runs badger
// value-log GC on a ticker. The event consumer in internal/events already
// implements suture.Service and is added to the tree directly.
package services
