// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

/*
Command explore is a terminal front end for the recipe explorer.

It fetches the catalog once, applies the name query, the tag panel query and
the include/exclude tag filters, and prints the visible recipes followed by
the tag panel:

	$ explore -include vegan -exclude spicy
	1 of 3 recipes

	NAME         RATING  PREVIEW
	Fruit Salad  0.0

	Tags:
	  [-] spicy
	  [+] vegan

Flags:

	-url      catalog endpoint (default http://localhost:8080/api/v1/recipes)
	-q        case-insensitive name substring
	-tag-q    case-insensitive tag substring, narrows the tag panel only
	-include  comma-separated tags a recipe must have
	-exclude  comma-separated tags a recipe must not have
	-timeout  fetch timeout (default 30s)

The exit code is 1 when the catalog cannot be fetched and 2 on bad flags.
*/
package main
