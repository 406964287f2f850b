// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

// Package logging provides the process-wide zerolog logger for Pantry.
//
// JSON output is the default for production; console output is meant for
// development and for the explore command.
//
// # Quick Start
//
// Call Init once from main after the configuration is loaded:
//
//	logging.Init(logging.Config{
//	    Level:     cfg.Logging.Level,  // trace, debug, info, warn, error
//	    Format:    cfg.Logging.Format, // json or console
//	    Caller:    cfg.Logging.Caller,
//	    Timestamp: true,
//	})
//	logging.Info().Str("addr", addr).Msg("Server listening")
//
// Always terminate an event chain with Msg or Send, otherwise nothing is written.
//
// # Configuration
//
// Environment variables (read by internal/config, not by this package):
//
//	LOG_LEVEL   - minimum level (default: info)
//	LOG_FORMAT  - json or console (default: json)
//	LOG_CALLER  - add file:line to every entry (default: false)
//
// # Request Context
//
// The HTTP middleware stores a request id and a correlation id in the request
// context, and the auth middleware adds the user id. Handlers should log
// through Ctx so those ids travel with every line:
//
//	logging.Ctx(r.Context()).Warn().Err(err).Str("recipe_id", id).Msg("Rating failed")
//
// Long-lived components take a component-scoped logger instead:
//
//	log := logging.WithComponent("store-gc")
//
// # Adapters
//
//   - NewSlogLogger returns a *slog.Logger for sutureslog, so supervisor
//     restarts and failures land in the same stream.
//   - NewWatermillAdapter implements watermill.LoggerAdapter for the event bus.
//
// # Sensitive Values
//
// AuthLogger records sign-up, sign-in and logout attempts with user ids and
// emails masked (MaskID, MaskEmail). SanitizeValue strips CR/LF from
// user-supplied strings before they are logged:
//
//	logging.Warn().Str("origin", logging.SanitizeValue(origin)).Msg("WebSocket origin rejected")
//
// # Testing
//
// NewTestLogger writes JSON without timestamps to a buffer, and
// SetLogger swaps the global logger for the duration of a test.
package logging
