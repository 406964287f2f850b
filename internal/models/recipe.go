// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package models

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Rating bounds for the recipe average and for a single vote.
const (
	MinRating = 0
	MaxRating = 5
)

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	Quantity string `json:"quantity"`
	Name     string `json:"name"`
}

// UnmarshalJSON accepts a quantity given as a string or a number.
func (i *Ingredient) UnmarshalJSON(data []byte) error {
	var aux struct {
		Quantity json.RawMessage `json:"quantity"`
		Name     string          `json:"name"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	i.Name = aux.Name
	i.Quantity = decodeQuantity(aux.Quantity)
	return nil
}

func decodeQuantity(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

// Recipe is a shared recipe.
//
// Tags is an open set: any key may appear, and a key absent from Tags reads
// as false. Rating is the average of all votes (RatingSum / RatingCount),
// 0 while the recipe is unrated.
type Recipe struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Ingredients []Ingredient    `json:"ingredients"`
	Steps       []string        `json:"steps"`
	Tags        map[string]bool `json:"tags"`
	Rating      float64         `json:"rating"`

	AuthorID    string    `json:"author_id,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	RatingCount int       `json:"rating_count"`
	RatingSum   int       `json:"rating_sum"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UnmarshalJSON decodes a recipe leniently. Missing or null steps,
// ingredients and tags become empty values, a tag whose value is not a
// boolean reads as false, and the rating is clamped to [0, 5].
func (r *Recipe) UnmarshalJSON(data []byte) error {
	type Alias Recipe
	aux := &struct {
		Tags map[string]interface{} `json:"tags"`
		*Alias
	}{
		Alias: (*Alias)(r),
	}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	r.Tags = make(map[string]bool, len(aux.Tags))
	for k, v := range aux.Tags {
		b, _ := v.(bool)
		r.Tags[k] = b
	}
	r.Normalize()
	return nil
}

// Normalize replaces nil collections with empty ones and clamps Rating.
func (r *Recipe) Normalize() {
	if r.Ingredients == nil {
		r.Ingredients = []Ingredient{}
	}
	if r.Steps == nil {
		r.Steps = []string{}
	}
	if r.Tags == nil {
		r.Tags = map[string]bool{}
	}
	r.Rating = ClampRating(r.Rating)
}

// Tag reports the value of a tag. An absent tag is false.
func (r *Recipe) Tag(name string) bool {
	return r.Tags[name]
}

// Preview returns the first step, used as the recipe's description.
func (r *Recipe) Preview() string {
	if len(r.Steps) == 0 {
		return ""
	}
	return r.Steps[0]
}

// ApplyVote folds a vote into the rating aggregate. previous is the caller's
// earlier vote on this recipe, 0 if none, so re-rating replaces the old vote.
func (r *Recipe) ApplyVote(stars, previous int) {
	if previous > 0 {
		r.RatingSum -= previous
		r.RatingCount--
	}
	r.RatingSum += stars
	r.RatingCount++
	r.recomputeRating()
}

func (r *Recipe) recomputeRating() {
	if r.RatingCount <= 0 {
		r.RatingCount, r.RatingSum, r.Rating = 0, 0, 0
		return
	}
	r.Rating = ClampRating(float64(r.RatingSum) / float64(r.RatingCount))
}

// ClampRating limits v to [MinRating, MaxRating].
func ClampRating(v float64) float64 {
	switch {
	case v < MinRating || math.IsNaN(v):
		return MinRating
	case v > MaxRating:
		return MaxRating
	default:
		return v
	}
}

// MatchesName reports whether the recipe name contains q, ignoring case.
// An empty q matches every recipe.
func (r *Recipe) MatchesName(q string) bool {
	return ContainsFold(r.Name, q)
}

// ContainsFold is a case-insensitive substring test.
func ContainsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// RecipeList is the payload the Recipe Explorer loads: {"recipes": [...]}.
//
// Decoding drops entries that are not JSON objects, that fail to decode, that
// have no id, or whose id already appeared earlier in the payload. Dropped
// counts those entries and is never serialized.
type RecipeList struct {
	Recipes []Recipe `json:"recipes"`
	Dropped int      `json:"-"`
}

// UnmarshalJSON implements the lenient payload decoding described on RecipeList.
func (l *RecipeList) UnmarshalJSON(data []byte) error {
	var aux struct {
		Recipes []json.RawMessage `json:"recipes"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	l.Recipes = make([]Recipe, 0, len(aux.Recipes))
	l.Dropped = 0
	seen := make(map[string]struct{}, len(aux.Recipes))
	for _, raw := range aux.Recipes {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '{' {
			l.Dropped++
			continue
		}
		var rec Recipe
		if err := json.Unmarshal(raw, &rec); err != nil || rec.ID == "" {
			l.Dropped++
			continue
		}
		if _, dup := seen[rec.ID]; dup {
			l.Dropped++
			continue
		}
		seen[rec.ID] = struct{}{}
		l.Recipes = append(l.Recipes, rec)
	}
	return nil
}

// MarshalJSON always emits an array, never null.
func (l RecipeList) MarshalJSON() ([]byte, error) {
	recipes := l.Recipes
	if recipes == nil {
		recipes = []Recipe{}
	}
	return json.Marshal(struct {
		Recipes []Recipe `json:"recipes"`
	}{recipes})
}

// RecipeSummary is the compact form used in list views.
type RecipeSummary struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Preview  string          `json:"preview"`
	Rating   float64         `json:"rating"`
	Tags     map[string]bool `json:"tags"`
	ImageURL string          `json:"image_url,omitempty"`
}

// Summary returns the compact form of r.
func (r *Recipe) Summary() RecipeSummary {
	tags := r.Tags
	if tags == nil {
		tags = map[string]bool{}
	}
	return RecipeSummary{
		ID:       r.ID,
		Name:     r.Name,
		Preview:  r.Preview(),
		Rating:   r.Rating,
		Tags:     tags,
		ImageURL: r.ImageURL,
	}
}
