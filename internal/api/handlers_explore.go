// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/pantry/internal/explorer"
)

// Explore runs one explorer session over the catalog and returns its view.
//
// Query parameters:
//   - q: case-insensitive substring over recipe names
//   - tag_q: narrows the tag panel, never the recipes
//   - include, exclude: comma-separated tag names
//
// A tag listed in both include and exclude is excluded. A recipe without a
// tag reads it as false, so including a tag that no recipe carries returns
// an empty view.
func (h *Handler) Explore(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()
	req := ExploreRequest{
		Query:    q.Get("q"),
		TagQuery: q.Get("tag_q"),
		Include:  parseCommaSeparated(q.Get("include")),
		Exclude:  parseCommaSeparated(q.Get("exclude")),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	var cached bool
	ex := explorer.New(h.catalog.fetcher(&cached))
	ex.SetQuery(req.Query)
	ex.SetTagQuery(req.TagQuery)
	for tag, state := range explorer.FilterFromLists(req.Include, req.Exclude) {
		ex.SetTagState(tag, state)
	}

	if err := ex.Load(r.Context()); err != nil {
		respondErr(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, ex.View(), start, cached)
}
