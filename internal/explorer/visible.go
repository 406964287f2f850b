// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package explorer

import "github.com/tomtom215/pantry/internal/models"

// constraint is one active tag filter.
type constraint struct {
	tag   string
	state TriState
}

// Visible returns the recipes that match the name query q and every active
// tag constraint in state, in their original order.
//
// A tag missing from a recipe reads as false: it fails Include and passes
// Exclude, whether or not any other recipe carries it.
func Visible(recipes []models.Recipe, q string, state FilterState) []models.Recipe {
	active := activeConstraints(state)
	out := make([]models.Recipe, 0, len(recipes))
	for i := range recipes {
		if matches(&recipes[i], q, active) {
			out = append(out, recipes[i])
		}
	}
	return out
}

// Matches reports whether a single recipe passes q and state.
func Matches(r *models.Recipe, q string, state FilterState) bool {
	return matches(r, q, activeConstraints(state))
}

func activeConstraints(state FilterState) []constraint {
	if state.Active() == 0 {
		return nil
	}
	active := make([]constraint, 0, len(state))
	for tag, s := range state {
		if s != None {
			active = append(active, constraint{tag, s})
		}
	}
	return active
}

func matches(r *models.Recipe, q string, active []constraint) bool {
	if !r.MatchesName(q) {
		return false
	}
	for _, c := range active {
		if !c.state.Allows(r.Tag(c.tag)) {
			return false
		}
	}
	return true
}
