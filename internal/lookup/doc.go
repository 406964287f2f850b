// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

/*
Package lookup talks to the third-party food APIs.

Upstreams:

  - USDA FoodData Central for nutrition facts
  - Spoonacular for nutrition (fallback), ingredient prices and images
  - a Custom Search image API for recipe and ingredient pictures
  - an OpenAI-compatible chat completions endpoint, streamed

Every upstream gets its own client with an outbound token-bucket limiter and
a circuit breaker. Service layers fallback, caching and request coalescing on
top: a nutrition lookup tries USDA first and falls back to Spoonacular, and
concurrent identical lookups share one upstream call.

An upstream without an API key is not an error at startup; calls that need it
return ErrNotConfigured.
*/
package lookup
