// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package explorer

import (
	"sort"

	"github.com/tomtom215/pantry/internal/models"
)

// DeriveTags returns every distinct tag key found in the recipes, sorted.
// Recipes without tags contribute nothing. The result is never nil.
func DeriveTags(recipes []models.Recipe) []string {
	seen := make(map[string]struct{})
	for i := range recipes {
		for tag := range recipes[i].Tags {
			seen[tag] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// FilterTags keeps the tags whose name contains q, ignoring case.
// Order is preserved and an empty q keeps every tag.
func FilterTags(tags []string, q string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if models.ContainsFold(tag, q) {
			out = append(out, tag)
		}
	}
	return out
}
