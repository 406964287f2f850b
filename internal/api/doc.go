// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

/*
Package api is Pantry's HTTP API: a chi router, the JSON envelope and the
handlers for recipes, the explorer view, user lists, ingredient lookups and
the chat WebSocket.

Every JSON response uses models.APIResponse:

	{"status":"success","data":{...},"metadata":{"timestamp":"...","query_time_ms":3}}
	{"status":"error","data":null,"metadata":{...},"error":{"code":"NOT_FOUND","message":"..."}}

Error codes come from a single mapping of package sentinel errors (see
errors.go), so handlers return errors and never choose status codes for
store, auth or lookup failures themselves. Internal error text is logged and
replaced with a generic message.

Routes live under /api/v1. Catalog reads are public. Everything else needs a
session (anonymous sessions included) and is checked against the Casbin
policy in internal/authz:

	GET    /health
	POST   /auth/signup | /auth/login | /auth/anonymous | /auth/logout
	GET    /auth/oidc/login | /auth/oidc/callback | /auth/me
	GET    /recipes           explorer payload {"recipes":[...]}
	POST   /recipes           member
	GET    /recipes/{id}
	DELETE /recipes/{id}      author or admin
	POST   /recipes/{id}/rating
	GET    /recipes/{id}/nutrition
	GET    /explore?q=&tag_q=&include=a,b&exclude=c
	GET    /me/saved | /me/uploaded | /me/shopping
	PUT    /me/saved/{id}, DELETE /me/saved/{id}
	POST   /me/shopping, POST /me/shopping/from-recipe/{id}
	PATCH  /me/shopping/{itemID}, DELETE /me/shopping/{itemID}, DELETE /me/shopping
	GET    /lookup/nutrition?ingredient= | /lookup/price?ingredient=&quantity= | /lookup/image?q=
	GET    /chat/ws

/metrics serves Prometheus outside /api/v1.
*/
package api
