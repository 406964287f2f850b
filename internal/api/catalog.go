// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package api

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/pantry/internal/cache"
	"github.com/tomtom215/pantry/internal/explorer"
	"github.com/tomtom215/pantry/internal/models"
)

const catalogKey = "catalog"

// catalogLoadTimeout bounds a shared catalog read once it is detached from
// the request that started it.
const catalogLoadTimeout = 15 * time.Second

// catalogCache holds the last catalog snapshot served to /recipes and
// /explore. Snapshots are shared between requests and must not be mutated.
// Writes through the API clear it, and so does the event consumer.
type catalogCache struct {
	cache   *cache.Cache // nil disables caching
	load    explorer.Fetcher
	timeout time.Duration
	flights singleflight.Group
}

func newCatalogCache(ttl time.Duration, load explorer.Fetcher) *catalogCache {
	c := &catalogCache{load: load, timeout: catalogLoadTimeout}
	if ttl > 0 {
		c.cache = cache.New("catalog", ttl)
	}
	return c
}

// get returns the catalog and whether it came from the cache. Concurrent
// misses share one store read, which runs detached from the caller that
// started it: a canceled request gives up waiting without failing the rest.
func (c *catalogCache) get(ctx context.Context) (*models.RecipeList, bool, error) {
	if c.cache == nil {
		list, err := c.load(ctx)
		return list, false, err
	}
	if v, ok := c.cache.Get(catalogKey); ok {
		if list, ok := v.(*models.RecipeList); ok {
			return list, true, nil
		}
	}
	ch := c.flights.DoChan(catalogKey, func() (interface{}, error) {
		lctx := context.WithoutCancel(ctx)
		if c.timeout > 0 {
			var cancel context.CancelFunc
			lctx, cancel = context.WithTimeout(lctx, c.timeout)
			defer cancel()
		}
		list, err := c.load(lctx)
		if err != nil {
			return nil, err
		}
		c.cache.Set(catalogKey, list)
		return list, nil
	})
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*models.RecipeList), false, nil
	}
}

// fetcher adapts the cache to an explorer.Fetcher. cached reports whether
// the last fetch was a cache hit.
func (c *catalogCache) fetcher(cached *bool) explorer.Fetcher {
	return func(ctx context.Context) (*models.RecipeList, error) {
		list, hit, err := c.get(ctx)
		*cached = hit
		return list, err
	}
}

// Clear drops the snapshot. It satisfies events.Clearer.
func (c *catalogCache) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
	c.flights.Forget(catalogKey)
}

func (c *catalogCache) close() {
	if c.cache != nil {
		c.cache.Close()
	}
}
