// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

/*
Package websocket serves the streaming recipe assistant over WebSocket
connections.

Key Components:

  - Hub: tracks open sessions, closes them on shutdown and fans out
    catalog notices to every session
  - Client: one connection with a read pump, a write pump and at most one
    running prompt
  - Message: the JSON frame exchanged in both directions

Protocol:

The browser sends

	{"type":"prompt","messages":[{"role":"user","content":"..."}]}
	{"type":"ping"}

and the server answers with

	{"type":"chunk","data":"..."}   one per streamed token group
	{"type":"done"}                 after the last chunk
	{"type":"error","data":"..."}   when the prompt failed
	{"type":"pong"}
	{"type":"catalog_changed","data":{"topic":"recipe.created","recipe_id":"..."}}

A second prompt sent while one is streaming is answered with an error frame
and otherwise ignored.

Keepalive:

The write pump pings every pingPeriod and the read deadline is pushed out by
pongWait on every pong, so dead peers are dropped within a minute.
*/
package websocket
