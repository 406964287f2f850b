// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

/*
Package events carries recipe domain events between the API and the
background consumers.

Publishers (the recipe handlers) call Bus.Publish after a write has been
committed. The Consumer runs a Watermill router over the in-process
gochannel pub/sub and hands every event to its Handlers, which keep derived
state fresh: the cached catalog snapshot behind /explore is dropped and open
chat sessions are told that the catalog changed.

Topics:

  - recipe.created
  - recipe.deleted
  - recipe.rated

Delivery is at-most-once within a single process. A handler error is
retried by the router and then logged; it never reaches the publisher.
*/
package events
