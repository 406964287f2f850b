// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

/*
Package explorer implements the Recipe Explorer. It loads a recipe catalog
through an injected Fetcher, derives the available tags from the data, and
narrows the catalog with a name search plus a tri-state toggle per tag.

# Overview

The pieces are usable on their own:

  - DeriveTags: the sorted union of tag keys across a collection
  - FilterTags: the case-insensitive search over tag names for the tag panel
  - TriState and FilterState: the none -> include -> exclude -> none cycle
  - Visible: the stable, order-preserving filter

Explorer wraps them in a session that is safe for concurrent use.

# Load States

	loading --Load ok--> loaded     (an empty catalog is still loaded)
	loading --Load err-> failed     (error kept for display, no retry)

A panic inside the Fetcher is recovered and reported as a failed load.
Filtering before a load completes works over an empty collection.

# Tag Semantics

A tag missing from a recipe reads as false, including when the recipe has no
tags map at all:

	state     tag true   tag false   tag absent
	none      shown      shown       shown
	include   shown      hidden      hidden
	exclude   hidden     shown       shown

Every non-none entry is evaluated, so including a tag that no recipe carries
yields an empty view. After a reload, a toggle for a tag that the previous
catalog carried and the new one does not keeps its position but stops
filtering until the tag returns or is set again.

# Fetchers

HTTPFetcher GETs a {"recipes": [...]} payload (bare or wrapped in the API
envelope) with a 32 MiB limit. StaticFetcher serves a fixed slice, and the
server injects a fetcher backed by the document store.

# Example

	ex := explorer.New(explorer.HTTPFetcher(http.DefaultClient, "http://localhost:8080/api/v1/recipes"))
	if err := ex.Load(ctx); err != nil {
	    // ex.View().State == explorer.StateFailed
	}
	ex.Toggle("vegan") // include
	ex.SetQuery("pie")
	view := ex.View()
*/
package explorer
