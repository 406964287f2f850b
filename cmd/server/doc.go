// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

/*
Package main is the entry point for the Pantry server.

Pantry is a self-hosted recipe sharing service. Users browse the shared
catalog in the recipe explorer (name search plus include/exclude tag
filters), upload and rate recipes, keep saved recipes and a shopping list,
look up nutrition, prices and images for ingredients, and chat with a
cooking assistant over a WebSocket.

# Application Architecture

Long-running components run under a Suture v4 supervisor tree:

	RootSupervisor ("pantry")
	├── DataSupervisor ("data-layer")
	│   └── Store GC (BadgerDB value-log GC, skipped in memory)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket hub (chat sessions, catalog notices)
	│   └── Recipe event consumer (cache invalidation, client notices)
	└── APISupervisor ("api-layer")
	    └── HTTP server

Initialization order:

 1. Configuration: Koanf v2 layering defaults, config.yaml and environment
 2. Logging: zerolog, bridged to slog for Suture and to Watermill
 3. Store: BadgerDB, on disk or in memory
 4. Auth: JWT sessions, password and anonymous sign-in, optional OIDC
 5. Authorization: embedded Casbin RBAC policy
 6. Lookups: USDA, Spoonacular, image search and chat upstreams
 7. Events: in-process Watermill pub/sub
 8. HTTP: chi router, then the supervisor tree

# Configuration

The essentials:

	JWT_SECRET        32+ character signing secret (required)
	STORE_PATH        BadgerDB directory (default /data/pantry)
	STORE_IN_MEMORY   true for a throwaway store
	HTTP_PORT         listen port (default 8080)
	ADMIN_EMAIL       account that becomes admin on sign-up
	CORS_ORIGINS      comma-separated allowed origins
	USDA_API_KEY, SPOONACULAR_API_KEY, IMAGE_SEARCH_API_KEY, CHAT_API_KEY

Lookups without a key answer 503 and the rest of the API keeps working.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
server with a graceful shutdown, then the messaging and data
layers, and the store is closed last.
*/
package main
