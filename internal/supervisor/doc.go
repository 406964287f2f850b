// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

/*
Package supervisor runs Pantry's long-lived services under a suture v4 tree.

Services are grouped into three layers so a crash in one restarts only that
layer:

	RootSupervisor ("pantry")
	├── DataSupervisor ("data-layer")
	│   └── StoreGCService (skipped for in-memory stores)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── HubService (chat WebSocket hub)
	│   └── events.Consumer (catalog cache invalidation)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Supervisor events (start, stop, failure, backoff) are logged through
sutureslog, which is fed by the zerolog-backed slog handler from
internal/logging:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddMessagingService(services.NewHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	err = tree.Serve(ctx)

A failing service is restarted immediately until FailureThreshold failures
accumulate (decaying at FailureDecay per second), after which the layer waits
FailureBackoff before trying again.
*/
package supervisor
