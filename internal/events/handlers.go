// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package events

import (
	"context"

	"github.com/tomtom215/pantry/internal/logging"
)

// Clearer is a cache that can be emptied.
type Clearer interface {
	Clear()
}

// InvalidateCache returns a handler that clears c on every event.
func InvalidateCache(c Clearer) Handler {
	return func(ctx context.Context, ev *RecipeEvent) error {
		c.Clear()
		logging.Ctx(ctx).Debug().Str("topic", ev.Topic).Str("recipe_id", ev.RecipeID).Msg("Catalog cache invalidated")
		return nil
	}
}

// Notifier tells connected clients that a recipe changed.
type Notifier interface {
	BroadcastCatalogChanged(topic, recipeID string)
}

// NotifyClients returns a handler forwarding every event to n.
func NotifyClients(n Notifier) Handler {
	return func(_ context.Context, ev *RecipeEvent) error {
		n.BroadcastCatalogChanged(ev.Topic, ev.RecipeID)
		return nil
	}
}
